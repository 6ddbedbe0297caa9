// Package logging provides a logging abstraction layer that decouples the ledger
// from a specific logging framework. Components receive a Logger through their
// constructors; tests inject MockLogger.
package logging

// Logger defines structured logging used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// OrDefault returns logger, or an info-level text logger when logger is nil.
func OrDefault(logger Logger) Logger {
	if logger == nil {
		return NewLogrusAdapter("info", "text")
	}
	return logger
}
