// Package logger provides a small structured logging facade over slog.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Frames to skip when resolving the caller: resolveCaller -> log method -> caller.
const callerSkipFrames = 2

// Logger is the logging interface used across the service.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field is a key-value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Named(name string) Logger {
	return &slogAdapter{l: a.l.WithGroup(name)}
}

func (a *slogAdapter) Debug(ctx context.Context, msg string, fields ...Field) {
	a.log(ctx, slog.LevelDebug, msg, fields)
}

func (a *slogAdapter) Info(ctx context.Context, msg string, fields ...Field) {
	a.log(ctx, slog.LevelInfo, msg, fields)
}

func (a *slogAdapter) Warn(ctx context.Context, msg string, fields ...Field) {
	a.log(ctx, slog.LevelWarn, msg, fields)
}

func (a *slogAdapter) Error(ctx context.Context, msg string, fields ...Field) {
	a.log(ctx, slog.LevelError, msg, fields)
}

func (a *slogAdapter) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", resolveCaller()))
	a.l.LogAttrs(ctx, level, msg, attrs...)
}

var (
	global   Logger
	levelVar slog.LevelVar
)

// Init initializes the global logger at info level.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &levelVar})
	global = &slogAdapter{l: slog.New(h)}
	return nil
}

// Get returns the global logger. Init must have been called.
func Get() Logger {
	if global == nil {
		panic("logger not initialized; call logger.Init() first")
	}
	return global
}

// Named returns a named logger off the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// SetLevel updates the handler level.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and applies a level string.
// Accepts debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// resolveCaller reports the logging call site as file.go:line.
func resolveCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames + 1)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
