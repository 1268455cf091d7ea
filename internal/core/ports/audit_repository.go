package ports

import (
	"context"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// AuditRepository persists the audit trail. Callers treat failures as
// non-fatal.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}
