package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// AuditSink persists audit events. Implementations must be safe for
// concurrent use by dispatcher workers.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Enqueue(event domain.AuditEvent)
}
