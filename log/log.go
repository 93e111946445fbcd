// Package log carries the prefixed loggers used across the tool. Each
// protocol layer gets its own child with an independent debug toggle.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var Root = &logrus.Logger{
	Out:   os.Stderr,
	Level: logrus.TraceLevel,
	Formatter: &prefixed.TextFormatter{
		DisableColors: func() bool {
			term, ok := os.LookupEnv("TERM")
			return term == "" || !ok
		}(),
		ForceFormatting: true,
		TimestampFormat: "2006-01-02 15:04:05",
	},
}

type ChildLogger struct {
	parent *logrus.Logger
	prefix string
	level  logrus.Level
}

func NewChildLogger(parent *logrus.Logger, prefix string, debug bool) *ChildLogger {
	lc := &ChildLogger{
		parent: parent,
		prefix: prefix,
	}

	if debug {
		lc.level = logrus.DebugLevel
	} else {
		lc.level = logrus.InfoLevel
	}

	return lc
}

func (l *ChildLogger) shouldOutput(level logrus.Level) bool {
	return l.level >= level
}

func (l *ChildLogger) Debug(args ...interface{}) {
	if l.shouldOutput(logrus.DebugLevel) {
		l.parent.WithField("prefix", l.prefix).Debug(args...)
	}
}

func (l *ChildLogger) Info(args ...interface{}) {
	if l.shouldOutput(logrus.InfoLevel) {
		l.parent.WithField("prefix", l.prefix).Info(args...)
	}
}

func (l *ChildLogger) Warning(args ...interface{}) {
	if l.shouldOutput(logrus.WarnLevel) {
		l.parent.WithField("prefix", l.prefix).Warning(args...)
	}
}

func (l *ChildLogger) Error(args ...interface{}) {
	if l.shouldOutput(logrus.ErrorLevel) {
		l.parent.WithField("prefix", l.prefix).Error(args...)
	}
}

func (l *ChildLogger) Debugf(format string, args ...interface{}) {
	if l.shouldOutput(logrus.DebugLevel) {
		l.parent.WithField("prefix", l.prefix).Debugf(format, args...)
	}
}

func (l *ChildLogger) Infof(format string, args ...interface{}) {
	if l.shouldOutput(logrus.InfoLevel) {
		l.parent.WithField("prefix", l.prefix).Infof(format, args...)
	}
}

func (l *ChildLogger) Warningf(format string, args ...interface{}) {
	if l.shouldOutput(logrus.WarnLevel) {
		l.parent.WithField("prefix", l.prefix).Warningf(format, args...)
	}
}

func (l *ChildLogger) Errorf(format string, args ...interface{}) {
	if l.shouldOutput(logrus.ErrorLevel) {
		l.parent.WithField("prefix", l.prefix).Errorf(format, args...)
	}
}

func (l *ChildLogger) IsDebug() bool {
	return l.level >= logrus.DebugLevel
}

type Children struct {
	USB  *ChildLogger
	PTP  *ChildLogger
	Data *ChildLogger
}

func PrepareChildren(parent *logrus.Logger, usb, ptp, data bool) *Children {
	return &Children{
		USB:  NewChildLogger(parent, "usb", usb),
		PTP:  NewChildLogger(parent, "ptp", ptp),
		Data: NewChildLogger(parent, "data", data),
	}
}
