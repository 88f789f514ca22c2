package port

// Logger defines a common logging interface for the application.
// Arguments after msg are slog-style key/value pairs.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that prepends args to every record.
	With(args ...any) Logger
}
