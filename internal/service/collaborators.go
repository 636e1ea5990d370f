package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/locking"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// Notifier accepts notification commands. Implementations enqueue; callers
// log failures and never surface them.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// AuditSink records committed changes.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

func lockEntity(ctx context.Context, locker locking.Locker, kind domain.EntityKind, id string) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	unlock, err := locker.Lock(ctx, locking.Key(string(kind), id))
	if err != nil {
		if errors.Is(err, locking.ErrLockTimeout) {
			return nil, apperrors.NewConcurrentModification(string(kind), id, err)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return unlock, nil
}

func loadError(kind domain.EntityKind, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
	}
	return apperrors.NewStorageError("load "+string(kind), err)
}

func persistError(operation string, kind domain.EntityKind, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
	}
	return apperrors.NewStorageError(operation, err)
}

func requireEntityKind(kind domain.EntityKind) error {
	if kind.Valid() {
		return nil
	}
	return apperrors.NewValidationError("unsupported entity kind", map[string]any{"entity_kind": string(kind)})
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
