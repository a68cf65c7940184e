package core

// Logger is any service that can log messages at the usual levels.
// Implementations may inspect trailing args for known types (errors, maps,
// request actors) and forward them to an error tracker.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
