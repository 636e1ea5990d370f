package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/locking"
	"github.com/spec-kit/repair-shop/internal/observability"
	"github.com/spec-kit/repair-shop/internal/repository"
	"github.com/spec-kit/repair-shop/internal/workflow"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

const defaultDeleteReason = "ticket deleted"

// LifecycleService applies status changes and the delete requests that map onto them.
type LifecycleService struct {
	tickets      repository.RepairTicketRepository
	appointments repository.AppointmentRepository
	authority    workflow.Authority
	locker       locking.Locker
	notifier     Notifier
	audit        AuditSink
	logger       *zap.Logger
	metrics      *observability.Metrics
	now          func() time.Time
}

// LifecycleDependencies bundles collaborators.
type LifecycleDependencies struct {
	TicketRepo      repository.RepairTicketRepository
	AppointmentRepo repository.AppointmentRepository
	Authority       workflow.Authority
	Locker          locking.Locker
	Notifier        Notifier
	Audit           AuditSink
	Logger          *zap.Logger
	Metrics         *observability.Metrics
	Clock           func() time.Time
}

// NewLifecycleService creates the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &LifecycleService{
		tickets:      deps.TicketRepo,
		appointments: deps.AppointmentRepo,
		authority:    deps.Authority,
		locker:       deps.Locker,
		notifier:     deps.Notifier,
		audit:        deps.Audit,
		logger:       logger,
		metrics:      deps.Metrics,
		now:          clock,
	}
}

// statusSnapshot is the part of an entity a status change reads.
type statusSnapshot struct {
	status   string
	assignee *string
}

// ChangeStatus moves the entity to requested. on_hold and cancelled need a
// non-blank reason.
func (s *LifecycleService) ChangeStatus(ctx context.Context, kind domain.EntityKind, entityID, requested, reason, actorID string) error {
	if err := requireEntityKind(kind); err != nil {
		return err
	}
	if !s.authority.IsKnownStatus(kind, requested) {
		s.metrics.RecordRejection(string(kind), apperrors.CodeValidation)
		return apperrors.NewValidationError("unknown status", map[string]any{
			"entity_kind": kind,
			"status":      requested,
		})
	}
	unlock, err := lockEntity(ctx, s.locker, kind, entityID)
	if err != nil {
		return err
	}
	defer unlock()

	snapshot, err := s.load(ctx, kind, entityID)
	if err != nil {
		return err
	}
	return s.applyStatus(ctx, kind, entityID, snapshot, requested, reason, actorID)
}

// DeleteTicket cancels the ticket. Completed tickets cannot be deleted.
func (s *LifecycleService) DeleteTicket(ctx context.Context, ticketID, reason, actorID string) error {
	unlock, err := lockEntity(ctx, s.locker, domain.EntityTicket, ticketID)
	if err != nil {
		return err
	}
	defer unlock()

	snapshot, err := s.load(ctx, domain.EntityTicket, ticketID)
	if err != nil {
		return err
	}
	if snapshot.status == string(domain.TicketStatusCompleted) {
		s.metrics.RecordRejection(string(domain.EntityTicket), apperrors.CodeGuardViolation)
		return apperrors.NewGuardViolation(string(domain.EntityTicket), "delete", snapshot.status, map[string]any{"id": ticketID})
	}
	if strings.TrimSpace(reason) == "" {
		reason = defaultDeleteReason
	}
	return s.applyStatus(ctx, domain.EntityTicket, ticketID, snapshot, string(domain.TicketStatusCancelled), reason, actorID)
}

// DeleteAppointment removes an appointment that was never converted,
// cancelled or marked no-show.
func (s *LifecycleService) DeleteAppointment(ctx context.Context, appointmentID, actorID string) error {
	unlock, err := lockEntity(ctx, s.locker, domain.EntityAppointment, appointmentID)
	if err != nil {
		return err
	}
	defer unlock()

	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return loadError(domain.EntityAppointment, appointmentID, err)
	}
	if err := s.authority.CheckAppointmentDelete(appt); err != nil {
		s.metrics.RecordRejection(string(domain.EntityAppointment), apperrors.CodeGuardViolation)
		return err
	}
	if err := s.appointments.Delete(ctx, appointmentID); err != nil {
		return persistError("delete appointment", domain.EntityAppointment, appointmentID, err)
	}

	s.logger.Info("appointment deleted",
		zap.String("appointment_id", appointmentID),
		zap.String("actor_id", actorID),
	)
	recordAudit(ctx, s.audit, s.logger, domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditAppointmentDeleted,
		EntityKind: domain.EntityAppointment,
		EntityID:   appointmentID,
		Details: map[string]any{
			"status":      string(appt.Status),
			"customer_id": appt.CustomerID,
			"assignee":    appt.AssigneeID,
		},
	})
	return nil
}

func (s *LifecycleService) load(ctx context.Context, kind domain.EntityKind, id string) (statusSnapshot, error) {
	switch kind {
	case domain.EntityTicket:
		ticket, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return statusSnapshot{}, loadError(kind, id, err)
		}
		return statusSnapshot{status: string(ticket.Status), assignee: ticket.AssigneeID}, nil
	default:
		appt, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return statusSnapshot{}, loadError(kind, id, err)
		}
		return statusSnapshot{status: string(appt.Status), assignee: appt.AssigneeID}, nil
	}
}

func (s *LifecycleService) applyStatus(ctx context.Context, kind domain.EntityKind, id string, current statusSnapshot, requested, reason, actorID string) error {
	if err := s.authority.CheckStatusChange(kind, current.status, requested, reason); err != nil {
		if domainErr := apperrors.ToDomainError(err); domainErr != nil {
			s.metrics.RecordRejection(string(kind), domainErr.Code)
		}
		return err
	}
	reason = strings.TrimSpace(reason)

	var err error
	switch kind {
	case domain.EntityTicket:
		err = s.tickets.UpdateFields(ctx, id, s.ticketStatusFields(current.status, requested, reason))
	default:
		err = s.appointments.UpdateFields(ctx, id, appointmentStatusFields(requested, reason))
	}
	if err != nil {
		return persistError("update "+string(kind)+" status", kind, id, err)
	}

	s.logger.Info("status changed",
		zap.String("entity_kind", string(kind)),
		zap.String("entity_id", id),
		zap.String("from", current.status),
		zap.String("to", requested),
		zap.String("actor_id", actorID),
	)
	s.metrics.RecordStatusChange(string(kind), current.status, requested)
	recordAudit(ctx, s.audit, s.logger, domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditStatusChanged,
		EntityKind: kind,
		EntityID:   id,
		Details: map[string]any{
			"old_status": current.status,
			"new_status": requested,
			"reason":     reason,
		},
	})

	if current.assignee != nil && *current.assignee != "" && *current.assignee != actorID {
		sendNotification(ctx, s.notifier, s.logger, *current.assignee, actorID, domain.StatusChangePayload{
			Entity:    domain.EntityRef{Kind: kind, ID: id},
			OldStatus: current.status,
			NewStatus: requested,
			Reason:    reason,
		})
	}
	return nil
}

func (s *LifecycleService) ticketStatusFields(current, requested, reason string) repository.Fields {
	fields := repository.Fields{
		repository.TicketColumnStatus:       requested,
		repository.TicketColumnStatusReason: reason,
	}
	switch {
	case requested == string(domain.TicketStatusCompleted):
		completedAt := s.now()
		fields[repository.TicketColumnCompletedAt] = &completedAt
	case current == string(domain.TicketStatusCompleted):
		fields[repository.TicketColumnCompletedAt] = (*time.Time)(nil)
	}
	return fields
}

func appointmentStatusFields(requested, reason string) repository.Fields {
	fields := repository.Fields{repository.AppointmentColumnStatus: requested}
	if requested == string(domain.AppointmentStatusCancelled) {
		fields[repository.AppointmentColumnCancellationReason] = reason
	}
	return fields
}
