package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	return l
}

// SetLevel sets the logging level
func SetLevel(level Level) {
	switch level {
	case LevelError:
		logger.SetLevel(logrus.ErrorLevel)
	case LevelDebug:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput перенаправляет вывод логгера (используется в тестах)
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// Debug logs a debug message with component prefix
func Debug(component, format string, v ...interface{}) {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.WithField("component", component).Debug(fmt.Sprintf(format, v...))
	}
}

// Info logs an info message with component prefix
func Info(component, format string, v ...interface{}) {
	logger.WithField("component", component).Info(fmt.Sprintf(format, v...))
}

// Error logs an error message with component prefix
func Error(component, format string, v ...interface{}) {
	logger.WithField("component", component).Error(fmt.Sprintf(format, v...))
}
