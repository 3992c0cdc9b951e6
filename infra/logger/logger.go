package logger

import corelogger "github.com/kilianp07/gridpilot/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format and
// destination follow the last call to Configure.
func New(component string) Logger {
	return NewZerologLogger(component)
}
