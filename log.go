package itm

// log: package logging helpers.
//
// The package logs through a single logrus logger so that library users can
// replace or silence it. Verbose levels used by the itmrun executable map
// onto logrus levels here.

import (
	"github.com/sirupsen/logrus"
)

// log is the package logger. It defaults to warnings only so that library
// use is quiet; SetVerbose or SetLogger changes that.
var log = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// SetLogger replaces the package logger. Passing nil restores the default
// logger.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		log = newDefaultLogger()
		return
	}
	log = l
}

// SetVerbose adjusts the package logger level from a verbosity count:
// 0 warnings, 1 informational, 2 debug, 3 and above trace.
func SetVerbose(level int) {
	switch {
	case level <= 0:
		log.SetLevel(logrus.WarnLevel)
	case level == 1:
		log.SetLevel(logrus.InfoLevel)
	case level == 2:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.TraceLevel)
	}
}
