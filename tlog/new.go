package tlog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// New creates the top-level logger of a process. Entries go to stderr so that
// stdout stays free for command output.
func New(config Config) (*zap.Logger, error) {
	encoding, err := config.encoding()
	if err != nil {
		return nil, err
	}
	ec, err := config.encoderConfig()
	if err != nil {
		return nil, err
	}
	cfg := zap.Config{
		Level:             config.level(),
		Development:       encoding == "console",
		DisableStacktrace: !config.Verbose,
		Encoding:          encoding,
		EncoderConfig:     ec,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	return cfg.Build()
}

// NewForTesting creates a logger writing entries of all levels to the test log
func NewForTesting(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel)).Named(t.Name())
}
