package core

// Logger is any leveled logger that can also ship errors to a tracking service.
// Extra args may carry an error, context maps or a console account for tagging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
