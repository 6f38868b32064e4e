package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(terminalFormatter())

	if os.Getenv("DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// Scope returns the shared logger tagged with a scope field.
func Scope(name string) *logrus.Entry {
	return Log.WithField("scope", name)
}

func terminalFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		ForceColors:      true,
		DisableTimestamp: true,
	}
}

// SetOutput redirects the shared logger, e.g. to a file while the terminal
// view owns stdout. Colors are turned off for non-terminal writers.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
	if w == os.Stdout || w == os.Stderr {
		Log.SetFormatter(terminalFormatter())
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
}
