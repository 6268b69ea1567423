package core

import "github.com/sirupsen/logrus"

// LogrusLogger implements Logger on top of a structured logrus.FieldLogger,
// so engine progress lines carry the same level/field structure as the rest
// of a host application's logs instead of going straight to stdout.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a Logger backed by logrus, tagged with
// component="mcvox" so its lines are filterable alongside a host's own.
func NewLogrusLogger() Logger {
	return &LogrusLogger{entry: logrus.WithField("component", "mcvox")}
}

// Printf implements Logger by routing through logrus at Info level.
func (l *LogrusLogger) Printf(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}
