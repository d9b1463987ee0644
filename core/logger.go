package core

// Actor identifies the user on whose behalf an operation ran; loggers may
// attach it to error reports.
type Actor struct {
	ID       string
	Username string
	Email    string
}

// Logger is any leveled logging service.
// args may contain an error, a map[string]interface{} of extras or an Actor.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
