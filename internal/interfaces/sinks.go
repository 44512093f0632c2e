package interfaces

import (
	"context"

	"github.com/bsalter/interactions-client/internal/models"
)

//go:generate mockgen -source=sinks.go -destination=mock/sinks.go -package=mock

// MonitorSink receives classified errors for external monitoring. Calls are
// fire-and-forget; implementations must not block the request path.
type MonitorSink interface {
	ReportError(ctx context.Context, result models.ErrorResult)
}

// NotifySink surfaces user-facing messages, typically as transient
// notifications.
type NotifySink interface {
	Notify(level string, message string)
}
