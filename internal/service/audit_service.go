package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/events"
	"github.com/spec-kit/repair-shop/internal/repository"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// AuditService stores audit entries and publishes them as events.
type AuditService struct {
	repo       repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(repo repository.AuditRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Record persists entry, then publishes it. Publication never fails the call.
func (s *AuditService) Record(ctx context.Context, entry domain.AuditEntry) error {
	if err := s.repo.Create(ctx, &entry); err != nil {
		return apperrors.NewStorageError("record audit entry", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, events.FromAudit(entry)); err != nil {
			s.logger.Warn("failed to publish audit event",
				zap.String("action", string(entry.Action)),
				zap.String("entity_kind", string(entry.EntityKind)),
				zap.String("entity_id", entry.EntityID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// History lists audit entries for one entity, oldest first.
func (s *AuditService) History(ctx context.Context, kind domain.EntityKind, entityID string, limit int) ([]domain.AuditEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	entries, err := s.repo.ListByEntity(ctx, kind, entityID, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("list audit entries", err)
	}
	return entries, nil
}

func recordAudit(ctx context.Context, sink AuditSink, logger *zap.Logger, entry domain.AuditEntry) {
	if sink == nil {
		return
	}
	if err := sink.Record(ctx, entry); err != nil {
		logger.Warn("failed to record audit entry",
			zap.String("action", string(entry.Action)),
			zap.String("entity_kind", string(entry.EntityKind)),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}
