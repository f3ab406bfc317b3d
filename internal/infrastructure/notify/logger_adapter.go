package notify

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// LoggerAdapter routes watermill's internal logs to the service logger.
type LoggerAdapter struct {
	logger *logging.Logger
}

func NewLoggerAdapter(logger *logging.Logger) *LoggerAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoggerAdapter{logger: logger.Named("watermill")}
}

func (a *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(flatten(fields), "error", err)...)
}

func (a *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, flatten(fields)...)
}

func (a *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, flatten(fields)...)
}

func (a *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, flatten(fields)...)
}

func (a *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LoggerAdapter{logger: a.logger.With(flatten(fields)...)}
}

func flatten(fields watermill.LogFields) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
