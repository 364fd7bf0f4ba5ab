package services

import (
	"context"

	"timeclock/internal/logger"
	"timeclock/internal/models"
	"timeclock/internal/store"
)

// AuditService records admin actions. Failures are logged and never
// returned to the caller.
type AuditService struct {
	store store.Store
}

func NewAuditService(st store.Store) *AuditService {
	return &AuditService{store: st}
}

func (s *AuditService) Log(ctx context.Context, entry models.AuditLog) {
	if err := s.store.AppendAudit(ctx, &entry); err != nil {
		logger.Error("audit.write.failed", "action", entry.Action, "resource", entry.Resource, "err", err)
	}
}
