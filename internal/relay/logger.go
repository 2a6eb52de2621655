package relay

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/charmbracelet/log"
)

// LoggerAdapter routes watermill logs through a charmbracelet logger.
type LoggerAdapter struct {
	logger *log.Logger
}

// NewLoggerAdapter wraps logger for use by watermill publishers and subscribers.
func NewLoggerAdapter(logger *log.Logger) *LoggerAdapter {
	return &LoggerAdapter{logger: logger}
}

func (a *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(keyvals(fields), "error", err)...)
}

func (a *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, keyvals(fields)...)
}

func (a *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, keyvals(fields)...)
}

// Trace logs at debug level; charmbracelet/log has no trace level.
func (a *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, keyvals(fields)...)
}

func (a *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LoggerAdapter{logger: a.logger.With(keyvals(fields)...)}
}

func keyvals(fields watermill.LogFields) []any {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
