// Package run starts the top-level task of a command-line program: it sets up
// logging from the command line, closes the task's context on termination
// signals and turns the task's result into the process exit code.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ridge/multikey/tlog"
	"github.com/ridge/parallel"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	logFormat = pflag.String("log-format", string(tlog.FormatText), "Log format (json|text)")
	logColor  = pflag.String("log-color", string(tlog.ColorAuto), "Colored logs (yes|no|auto)")
	verbose   = pflag.BoolP("verbose", "v", false, "Log debug messages")
)

// WithExitCode is an optional interface of errors. When a (possibly wrapped)
// error implementing it is returned by the task, ExitCode becomes the exit
// code of the process instead of 1.
type WithExitCode interface {
	ExitCode() int
}

// ExitCode wraps err so that the process exits with code if err is returned by
// the task. Returns nil if err is nil.
func ExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return exitCodeError{err: err, code: code}
}

type exitCodeError struct {
	err  error
	code int
}

func (e exitCodeError) Error() string {
	return e.err.Error()
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

func (e exitCodeError) ExitCode() int {
	return e.code
}

// Tool runs task and exits the process.
//
// The command line is parsed first if main hasn't done it. The context passed
// to task carries the logger configured by --log-format, --log-color and
// --verbose, and is closed when SIGTERM, SIGINT or SIGHUP arrives.
//
// The process exits with 0 if task returns nil, with the code from
// WithExitCode if the error implements it, and with 1 otherwise. Deferred
// functions of the caller don't run, so keep the work inside task:
//
//	func main() {
//	    pflag.Parse()
//	    run.Tool(func(ctx context.Context) error {
//	        _, err := records.Load(ctx, schema, pflag.Arg(0))
//	        return err
//	    })
//	}
func Tool(task func(ctx context.Context) error) {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	config, err := loggingConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := tlog.New(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	code := execute(tlog.WithLogger(context.Background(), logger), task)
	_ = logger.Sync() // fails on some terminals; nothing to do about it
	os.Exit(code)
}

// Server is Tool for long-running tasks: a task stopped by a termination
// signal that returns the error of its closed context exits with 0
func Server(task func(ctx context.Context) error) {
	Tool(serverTask(task))
}

func serverTask(task func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := task(ctx)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
}

func execute(ctx context.Context, task func(ctx context.Context) error) int {
	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, task)
		spawn("signals", parallel.Exit, handleSignals)
		return nil
	})
	if err == nil {
		return 0
	}
	tlog.Get(ctx).Error("Failed", zap.Error(err))
	var wec WithExitCode
	if errors.As(err, &wec) {
		return wec.ExitCode()
	}
	return 1
}

func loggingConfig() (tlog.Config, error) {
	format, err := tlog.ParseFormat(*logFormat)
	if err != nil {
		return tlog.Config{}, err
	}
	color, err := tlog.ParseColor(*logColor)
	if err != nil {
		return tlog.Config{}, err
	}
	return tlog.Config{Format: format, Color: color, Verbose: *verbose}, nil
}
