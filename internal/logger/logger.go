package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

type implLogger struct {
	zl    zerolog.Logger
	level zerolog.Level
}

// New creates a console Logger writing to stderr at the given level.
func New(level string) Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a Logger with an explicit format and sink.
func NewWithOptions(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !strings.EqualFold(opts.Format, FormatJSON) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !isTerminal(out)}
	}

	level := parseLevel(opts.Level)
	return &implLogger{
		zl:    zerolog.New(out).Level(level).With().Timestamp().Logger(),
		level: level,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &implLogger{zl: zerolog.Nop(), level: zerolog.Disabled}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel // default to info
	}
	return lvl
}

func (l *implLogger) shouldLog(level zerolog.Level) bool {
	return level >= l.level && l.level != zerolog.Disabled
}

func (l *implLogger) log(ctx context.Context, level zerolog.Level, msg string, args []interface{}) {
	if !l.shouldLog(level) {
		return
	}
	ev := l.zl.WithLevel(level)
	for _, f := range fieldsFrom(ctx) {
		ev = ev.Str(f.key, f.value)
	}
	ev.Msgf(msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, zerolog.DebugLevel, msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, zerolog.InfoLevel, msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, zerolog.WarnLevel, msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, zerolog.ErrorLevel, msg, args)
}

type field struct {
	key, value string
}

type fieldsKey struct{}

// WithField returns a context whose log entries carry key=value.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	prev := fieldsFrom(ctx)
	next := make([]field, 0, len(prev)+1)
	next = append(next, prev...)
	next = append(next, field{key: key, value: fmt.Sprint(value)})
	return context.WithValue(ctx, fieldsKey{}, next)
}

func fieldsFrom(ctx context.Context) []field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]field)
	return fields
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
