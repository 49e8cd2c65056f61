// Package logger provides component-scoped structured logging for the
// collector services.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry pinned to a component name.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for the given component at the given level.
func New(component string, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: l.WithField("component", component)}
}

// NewDefault returns an info-level logger for the component.
func NewDefault(component string) *Logger {
	return New(component, logrus.InfoLevel)
}

// WithField returns a logger carrying an extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a logger carrying the error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }
