package logsvc

import (
	"log"

	"github.com/osei222/schoolfees/core"
)

// ConsoleLogger only writes to the standard logger. Used in dev and tests
// where shipping to an error tracker is unwanted.
type ConsoleLogger struct {
	std *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) *ConsoleLogger {
	return &ConsoleLogger{std: std}
}

func (l ConsoleLogger) print(level, msg string, args []interface{}) {
	l.std.Println(level + ": " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l ConsoleLogger) Debug(msg string, args ...interface{})   { l.print("DEBUG", msg, args) }
func (l ConsoleLogger) Info(msg string, args ...interface{})    { l.print("INFO", msg, args) }
func (l ConsoleLogger) Warning(msg string, args ...interface{}) { l.print("WARNING", msg, args) }
func (l ConsoleLogger) Error(msg string, args ...interface{})   { l.print("ERROR", msg, args) }

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
