// Package zaplogger adapts go.uber.org/zap to observability.Logger.
package zaplogger

import (
	"go.uber.org/zap"

	"github.com/lexfrei/go-fortimanager/observability"
)

// Logger implements observability.Logger on top of a *zap.Logger.
type Logger struct {
	z *zap.Logger
}

// Compile-time check to ensure Logger implements observability.Logger.
var _ observability.Logger = (*Logger)(nil)

// New wraps z. A nil z yields a no-op zap logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}

	return &Logger{z: z}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...observability.Field) {
	l.z.Debug(msg, convert(fields)...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...observability.Field) {
	l.z.Info(msg, convert(fields)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...observability.Field) {
	l.z.Warn(msg, convert(fields)...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...observability.Field) {
	l.z.Error(msg, convert(fields)...)
}

// With returns a child logger carrying fields on every entry.
//
//nolint:ireturn // Method must return interface to satisfy observability.Logger
func (l *Logger) With(fields ...observability.Field) observability.Logger {
	return &Logger{z: l.z.With(convert(fields)...)}
}

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.z
}

func convert(fields []observability.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}

	return out
}
