package apierr

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/models"
)

// Classifier converts raw pipeline errors into the normalized ErrorResult
// and forwards them to the monitoring and notification sinks. It is the only
// place error shapes are inspected.
type Classifier struct {
	logger     *zap.Logger
	monitor    interfaces.MonitorSink
	notifier   interfaces.NotifySink
	production bool
}

// NewClassifier creates a classifier. Either sink may be nil.
func NewClassifier(logger *zap.Logger, monitor interfaces.MonitorSink, notifier interfaces.NotifySink, production bool) *Classifier {
	return &Classifier{
		logger:     logger,
		monitor:    monitor,
		notifier:   notifier,
		production: production,
	}
}

// Classify maps an error to the normalized result object without side
// effects.
func (c *Classifier) Classify(err error) models.ErrorResult {
	result := models.ErrorResult{
		Success:   false,
		Timestamp: time.Now(),
	}
	if !c.production {
		result.Cause = err
	}

	var netErr *NetworkError
	var clientErr *ClientError
	var serverErr *ServerError
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		result.StatusCode = 422
		result.ErrorType = models.ErrorTypeValidation
		result.Message = validationErr.Error()
	case errors.As(err, &netErr):
		result.StatusCode = 0
		result.ErrorType = models.ErrorTypeNetwork
		result.Message = MessageFor(0)
	case errors.As(err, &clientErr):
		result.StatusCode = clientErr.StatusCode
		result.ErrorType = models.ErrorTypeClient
		result.Message = clientErr.Message
	case errors.As(err, &serverErr):
		result.StatusCode = serverErr.StatusCode
		result.ErrorType = models.ErrorTypeServer
		result.Message = serverErr.Message
	default:
		result.StatusCode = 500
		result.ErrorType = models.ErrorTypeServer
		result.Message = MessageFor(500)
	}

	return result
}

// Handle classifies err, records it, and forwards it to the sinks. The
// monitoring report is fire-and-forget; the user notification is skipped
// when suppressNotify is set.
func (c *Classifier) Handle(ctx context.Context, err error, suppressNotify bool) models.ErrorResult {
	result := c.Classify(err)

	metrics.RecordAPIError(string(result.ErrorType))
	c.logger.Error("API request failed",
		zap.Int("status_code", result.StatusCode),
		zap.String("error_type", string(result.ErrorType)),
		zap.Error(err))

	if c.monitor != nil {
		go c.monitor.ReportError(context.WithoutCancel(ctx), result)
	}

	if c.notifier != nil && !suppressNotify {
		c.notifier.Notify("error", result.Message)
	}

	return result
}
