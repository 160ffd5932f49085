// Package logging builds the logrus loggers used by the trinket tools.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// LogArgs can be embedded in a go-arg Args struct to add a --log-level flag.
type LogArgs struct {
	LogLevel string `arg:"--log-level" default:"info" help:"Set the logging level (panic, fatal, error, warn, info, debug, trace)"`
}

type Logger struct {
	*logrus.Logger
}

// NewLogger returns a logger writing to stderr at the given level.
// An unknown level falls back to info.
func NewLogger(level string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		l.Warnf("unknown log level '%s', using info", level)
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return &Logger{Logger: l}
}
