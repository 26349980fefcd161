package logger

import corelogger "github.com/v2xlab/obu/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is
// selected via the APP_ENV variable, the level via LOG_LEVEL or Configure.
func New(component string) Logger {
	return NewZerologLogger(component)
}
