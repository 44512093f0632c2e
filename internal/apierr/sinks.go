package apierr

import (
	"context"

	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/models"
)

// Ensure the log-backed sinks satisfy the interfaces
var (
	_ interfaces.MonitorSink = (*LogMonitorSink)(nil)
	_ interfaces.NotifySink  = (*LogNotifySink)(nil)
)

// LogMonitorSink reports classified errors to the structured log. Stands in
// for an external monitoring service when none is configured.
type LogMonitorSink struct {
	logger *zap.Logger
}

func NewLogMonitorSink(logger *zap.Logger) *LogMonitorSink {
	return &LogMonitorSink{logger: logger}
}

func (s *LogMonitorSink) ReportError(_ context.Context, result models.ErrorResult) {
	s.logger.Warn("Monitoring report",
		zap.Int("status_code", result.StatusCode),
		zap.String("error_type", string(result.ErrorType)),
		zap.String("message", result.Message),
		zap.Time("timestamp", result.Timestamp))
}

// LogNotifySink surfaces user-facing messages on the log. The CLI uses it
// in place of a toast notifier.
type LogNotifySink struct {
	logger *zap.Logger
}

func NewLogNotifySink(logger *zap.Logger) *LogNotifySink {
	return &LogNotifySink{logger: logger}
}

func (s *LogNotifySink) Notify(level, message string) {
	switch level {
	case "error":
		s.logger.Error(message)
	case "warning":
		s.logger.Warn(message)
	default:
		s.logger.Info(message)
	}
}
