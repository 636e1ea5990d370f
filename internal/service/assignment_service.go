package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/locking"
	"github.com/spec-kit/repair-shop/internal/observability"
	"github.com/spec-kit/repair-shop/internal/repository"
	"github.com/spec-kit/repair-shop/internal/workflow"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// AssignmentService is the single entry point for assignee changes on
// tickets and appointments.
type AssignmentService struct {
	tickets      repository.RepairTicketRepository
	appointments repository.AppointmentRepository
	staff        repository.StaffRepository
	authority    workflow.Authority
	locker       locking.Locker
	notifier     Notifier
	audit        AuditSink
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo      repository.RepairTicketRepository
	AppointmentRepo repository.AppointmentRepository
	StaffRepo       repository.StaffRepository
	Authority       workflow.Authority
	Locker          locking.Locker
	Notifier        Notifier
	Audit           AuditSink
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:      deps.TicketRepo,
		appointments: deps.AppointmentRepo,
		staff:        deps.StaffRepo,
		authority:    deps.Authority,
		locker:       deps.Locker,
		notifier:     deps.Notifier,
		audit:        deps.Audit,
		logger:       logger,
		metrics:      deps.Metrics,
	}
}

// Reassign moves entityID to newAssignee. A nil or empty newAssignee
// unassigns. Guard failures leave the entity untouched; notifications are
// sent only after the new assignee is stored.
func (s *AssignmentService) Reassign(ctx context.Context, kind domain.EntityKind, entityID string, newAssignee *string, actorID string) (domain.AssignmentEvent, error) {
	if err := requireEntityKind(kind); err != nil {
		return domain.AssignmentEvent{}, err
	}
	unlock, err := lockEntity(ctx, s.locker, kind, entityID)
	if err != nil {
		return domain.AssignmentEvent{}, err
	}
	defer unlock()

	previous, err := s.loadAndGuard(ctx, kind, entityID, newAssignee)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeGuardViolation) {
			s.metrics.RecordRejection(string(kind), apperrors.CodeGuardViolation)
		}
		return domain.AssignmentEvent{}, err
	}

	event := domain.NewAssignmentEvent(kind, entityID, previous, newAssignee)
	if event.Kind == domain.AssignmentNoop {
		return event, nil
	}
	if event.Next != nil {
		if err := s.checkAssignee(ctx, kind, *event.Next); err != nil {
			return domain.AssignmentEvent{}, err
		}
	}

	if err := s.persistAssignee(ctx, kind, entityID, event.Next); err != nil {
		return domain.AssignmentEvent{}, err
	}

	s.logger.Info("assignment changed",
		zap.String("entity_kind", string(kind)),
		zap.String("entity_id", entityID),
		zap.String("classification", string(event.Kind)),
		zap.String("previous", deref(event.Previous)),
		zap.String("next", deref(event.Next)),
		zap.String("actor_id", actorID),
	)
	s.metrics.RecordAssignment(string(kind), string(event.Kind))
	recordAudit(ctx, s.audit, s.logger, domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditAssignmentChanged,
		EntityKind: kind,
		EntityID:   entityID,
		Details: map[string]any{
			"classification": string(event.Kind),
			"previous":       event.Previous,
			"next":           event.Next,
		},
	})

	if event.Next != nil && *event.Next == actorID {
		return event, nil
	}
	for _, out := range AssignmentNotifications(event) {
		sendNotification(ctx, s.notifier, s.logger, out.Recipient, actorID, out.Payload)
	}
	return event, nil
}

// OutgoingNotification pairs a recipient with the payload they receive.
type OutgoingNotification struct {
	Recipient string
	Payload   domain.NotificationPayload
}

// AssignmentNotifications lists who is told about a classified change.
// A transfer yields transfer_out for the previous holder first, then
// transfer_in for the new one.
func AssignmentNotifications(event domain.AssignmentEvent) []OutgoingNotification {
	ref := domain.EntityRef{Kind: event.EntityKind, ID: event.EntityID}
	switch event.Kind {
	case domain.AssignmentNew:
		return []OutgoingNotification{
			{Recipient: *event.Next, Payload: domain.AssignPayload{Entity: ref}},
		}
	case domain.AssignmentUnassign:
		return []OutgoingNotification{
			{Recipient: *event.Previous, Payload: domain.UnassignPayload{Entity: ref}},
		}
	case domain.AssignmentTransfer:
		return []OutgoingNotification{
			{Recipient: *event.Previous, Payload: domain.TransferOutPayload{Entity: ref, NewAssignee: *event.Next}},
			{Recipient: *event.Next, Payload: domain.TransferInPayload{
				AssignPayload:    domain.AssignPayload{Entity: ref},
				PreviousAssignee: *event.Previous,
			}},
		}
	default:
		return nil
	}
}

func (s *AssignmentService) loadAndGuard(ctx context.Context, kind domain.EntityKind, id string, attempted *string) (*string, error) {
	switch kind {
	case domain.EntityTicket:
		ticket, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return nil, loadError(kind, id, err)
		}
		if err := s.authority.CheckTicketReassign(ticket, attempted); err != nil {
			return nil, err
		}
		return ticket.AssigneeID, nil
	default:
		appt, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return nil, loadError(kind, id, err)
		}
		if err := s.authority.CheckAppointmentReassign(appt, attempted); err != nil {
			return nil, err
		}
		return appt.AssigneeID, nil
	}
}

func (s *AssignmentService) checkAssignee(ctx context.Context, kind domain.EntityKind, staffID string) error {
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return apperrors.NewStorageError("load staff member", err)
	}
	if !member.Active {
		s.metrics.RecordRejection(string(kind), apperrors.CodeGuardViolation)
		return apperrors.NewGuardViolation("staff member", "assign work to", "inactive", map[string]any{"staff_id": staffID})
	}
	return nil
}

func (s *AssignmentService) persistAssignee(ctx context.Context, kind domain.EntityKind, id string, next *string) error {
	var err error
	switch kind {
	case domain.EntityTicket:
		err = s.tickets.UpdateFields(ctx, id, repository.Fields{repository.TicketColumnAssignee: next})
	default:
		err = s.appointments.UpdateFields(ctx, id, repository.Fields{repository.AppointmentColumnAssignee: next})
	}
	if err != nil {
		return persistError("update "+string(kind)+" assignee", kind, id, err)
	}
	return nil
}
