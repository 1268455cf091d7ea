package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

// recordAudit writes event to the audit trail. Failures are logged only.
func recordAudit(ctx context.Context, repo ports.AuditRepository, logger zerolog.Logger, event *domain.AuditEvent) {
	if repo == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := repo.InsertEvent(ctx, event); err != nil {
		logger.Warn().Err(err).
			Str("action", event.Action).
			Str("entity_id", event.EntityID).
			Msg("failed to record audit event")
	}
}
