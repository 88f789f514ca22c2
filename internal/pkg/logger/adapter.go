package logger

import (
	"io"
	"log/slog"

	"portfolio_dashboard/internal/app/port"
)

// slogAdapter implements port.Logger on top of a *slog.Logger.
// A nil inner logger means "use the package global", so adapters created
// before main installs the zap-backed handler still follow it.
type slogAdapter struct {
	inner *slog.Logger
}

// NewSlogAdapter returns a port.Logger that writes through the package global logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewDiscardAdapter returns a port.Logger that drops everything.
func NewDiscardAdapter() port.Logger {
	return &slogAdapter{inner: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a *slogAdapter) logger() *slog.Logger {
	if a.inner != nil {
		return a.inner
	}
	ensureInitialized()
	return globalLogger
}

// Info logs an informational message.
func (a *slogAdapter) Info(msg string, args ...any) {
	a.logger().Info(msg, args...)
}

// Debug logs a debug message.
func (a *slogAdapter) Debug(msg string, args ...any) {
	a.logger().Debug(msg, args...)
}

// Warn logs a warning.
func (a *slogAdapter) Warn(msg string, args ...any) {
	a.logger().Warn(msg, args...)
}

// Error logs an error.
func (a *slogAdapter) Error(msg string, args ...any) {
	a.logger().Error(msg, args...)
}

// With returns a child adapter carrying args on every record.
func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{inner: a.logger().With(args...)}
}
