package tlog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Format selects how log entries are rendered
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatText Format = "text" // human-readable, one line per entry
)

// ParseFormat parses a --log-format value. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatJSON, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("invalid log format %q (json|text)", s)
	}
}

// Color selects whether text logs are colored
type Color string

// Color values
const (
	ColorAuto Color = "auto" // colored if stderr is a terminal
	ColorYes  Color = "yes"
	ColorNo   Color = "no"
)

// ParseColor parses a --log-color value. The empty string means auto.
func ParseColor(s string) (Color, error) {
	switch c := Color(s); c {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorYes, ColorNo:
		return c, nil
	default:
		return "", fmt.Errorf("invalid log color %q (yes|no|auto)", s)
	}
}

// Config is the logging configuration of a process. The zero value logs text
// at Info level, colored on a terminal.
type Config struct {
	Format  Format
	Color   Color
	Verbose bool // include Debug messages
}

func (c Config) level() zap.AtomicLevel {
	if c.Verbose {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel)
}

func (c Config) encoding() (string, error) {
	switch c.Format {
	case FormatJSON:
		return "json", nil
	case "", FormatText:
		return "console", nil
	default:
		return "", fmt.Errorf("invalid log format %q", c.Format)
	}
}

func (c Config) colored() (bool, error) {
	switch c.Color {
	case "", ColorAuto:
		return term.IsTerminal(unix.Stderr), nil
	case ColorYes:
		return true, nil
	case ColorNo:
		return false, nil
	default:
		return false, fmt.Errorf("invalid log color %q", c.Color)
	}
}

func (c Config) encoderConfig() (zapcore.EncoderConfig, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if c.Format == FormatJSON {
		return ec, nil
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	colored, err := c.colored()
	if err != nil {
		return zapcore.EncoderConfig{}, err
	}
	if colored {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec, nil
}
