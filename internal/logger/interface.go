package logger

import "context"

// Logger is the levelled, printf-style logger shared by every package.
// Fields attached to ctx with WithField are added to each entry.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}
