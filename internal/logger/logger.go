// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout
// go-crm-sync.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, etc.) are available directly on *Logger.
// Application code passes *Logger by pointer and derives per-run loggers with
// GetChildLogger or WithRun.
package logger

import (
	"context"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

type options struct {
	level   zerolog.Level
	out     io.Writer
	console *bool
}

// Option customises NewLogger.
type Option func(*options)

// WithLevel sets the minimum emitted level.
func WithLevel(level zerolog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithOutput redirects log output. The default is os.Stderr so that stdout
// stays free for command output.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithConsole forces human-readable console output on or off. Without this
// option console output is used when the output is a terminal.
func WithConsole(enabled bool) Option {
	return func(o *options) { o.console = &enabled }
}

// NewLogger constructs a *Logger for the given role label (e.g. "cli",
// "scheduler").
//
// The logger is configured with:
//   - level Info unless overridden with WithLevel;
//   - a "role" field set to role;
//   - a timestamp on every entry;
//   - a "func" caller field holding the fully-qualified function name.
func NewLogger(role string, opts ...Option) *Logger {
	o := options{level: zerolog.InfoLevel, out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	zerolog.SetGlobalLevel(o.level)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	out := o.out
	if useConsole(o) {
		out = zerolog.ConsoleWriter{Out: o.out, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(out).Level(o.level).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

func useConsole(o options) bool {
	if o.console != nil {
		return *o.console
	}
	f, ok := o.out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// ParseLevel converts a textual level to zerolog.Level. verbose forces Debug.
// Unknown or empty names fall back to Info.
func ParseLevel(name string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop returns a *Logger that discards all log output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithRun returns a child logger tagged with a run identifier.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{l.With().Str("run_id", runID).Logger()}
}

// WithObject returns a child logger tagged with an object type.
func (l *Logger) WithObject(object string) *Logger {
	return &Logger{l.With().Str("object", object).Logger()}
}

// WithContext stores the logger in ctx so FromContext can recover it.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's log.Ctx
// helper and returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns its disabled or
// default logger, so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromContextOr returns the logger stored in ctx, or fallback when ctx
// carries none.
func FromContextOr(ctx context.Context, fallback *Logger) *Logger {
	l := log.Ctx(ctx)
	if l == nil || l == zerolog.DefaultContextLogger || l.GetLevel() == zerolog.Disabled {
		return fallback
	}
	return &Logger{*l}
}
