package logger

import (
	"go.uber.org/zap"
)

// Log is a no-op logger until Init runs, so packages can log from tests.
var Log = zap.NewNop().Sugar()

// Init replaces Log with a production logger, or a development logger with
// human-readable output when development is set.
func Init(development bool) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
