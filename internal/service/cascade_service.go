package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/locking"
	"github.com/spec-kit/repair-shop/internal/observability"
	"github.com/spec-kit/repair-shop/internal/repository"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// Cascade step names, in execution order.
const (
	StepTimeEntries             = "time_entries"
	StepTicketNotes             = "ticket_notes"
	StepRepairTickets           = "repair_tickets"
	StepAppointments            = "appointments"
	StepCustomerDevices         = "customer_devices"
	StepNotificationPreferences = "notification_preferences"
	StepCustomerComments        = "customer_comments"
	StepCustomer                = "customer"
)

const defaultSampleSize = 5

// DeletionSteps returns the fixed, children-first plan for one customer.
// Tickets go before appointments because tickets reference the appointment
// they were converted from.
func DeletionSteps(customerID string) []domain.DeletionStep {
	return []domain.DeletionStep{
		{Name: StepTimeEntries, Table: domain.TableTimeEntries, Filter: domain.RecordFilter{Column: "ticket_id", CustomerID: customerID, ViaTickets: true}},
		{Name: StepTicketNotes, Table: domain.TableTicketNotes, Filter: domain.RecordFilter{Column: "ticket_id", CustomerID: customerID, ViaTickets: true}},
		{Name: StepRepairTickets, Table: domain.TableRepairTickets, Filter: domain.RecordFilter{Column: "customer_id", CustomerID: customerID}},
		{Name: StepAppointments, Table: domain.TableAppointments, Filter: domain.RecordFilter{Column: "customer_id", CustomerID: customerID}},
		{Name: StepCustomerDevices, Table: domain.TableCustomerDevices, Filter: domain.RecordFilter{Column: "customer_id", CustomerID: customerID}},
		{Name: StepNotificationPreferences, Table: domain.TableNotificationPreferences, Filter: domain.RecordFilter{Column: "customer_id", CustomerID: customerID}},
		{Name: StepCustomerComments, Table: domain.TableComments, Filter: domain.RecordFilter{Column: "entity_id", CustomerID: customerID, EntityType: string(domain.EntityCustomer)}},
		{Name: StepCustomer, Table: domain.TableCustomers, Filter: domain.RecordFilter{Column: "id", CustomerID: customerID}},
	}
}

// CascadeService previews and executes customer deletion.
type CascadeService struct {
	customers  repository.CustomerRepository
	records    repository.CascadeRepository
	locker     locking.Locker
	audit      AuditSink
	logger     *zap.Logger
	metrics    *observability.Metrics
	sampleSize int
	now        func() time.Time
}

// CascadeDependencies bundles collaborators.
type CascadeDependencies struct {
	CustomerRepo repository.CustomerRepository
	CascadeRepo  repository.CascadeRepository
	Locker       locking.Locker
	Audit        AuditSink
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	SampleSize   int
	Clock        func() time.Time
}

// NewCascadeService creates the service.
func NewCascadeService(deps CascadeDependencies) *CascadeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sampleSize := deps.SampleSize
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &CascadeService{
		customers:  deps.CustomerRepo,
		records:    deps.CascadeRepo,
		locker:     deps.Locker,
		audit:      deps.Audit,
		logger:     logger,
		metrics:    deps.Metrics,
		sampleSize: sampleSize,
		now:        clock,
	}
}

// Preview counts and samples what Execute would remove. It never writes.
func (s *CascadeService) Preview(ctx context.Context, customerID string) (domain.DeletionPlan, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return domain.DeletionPlan{}, loadError(domain.EntityCustomer, customerID, err)
	}

	plan := domain.DeletionPlan{CustomerID: customerID, Customer: customer}
	counts := make(map[string]int64)
	for _, step := range DeletionSteps(customerID) {
		count, err := s.records.Count(ctx, step.Table, step.Filter)
		if err != nil {
			return domain.DeletionPlan{}, apperrors.NewStorageError("count "+step.Name, err)
		}
		sample, err := s.records.Sample(ctx, step.Table, step.Filter, s.sampleSize)
		if err != nil {
			return domain.DeletionPlan{}, apperrors.NewStorageError("sample "+step.Name, err)
		}
		counts[step.Name] = count
		plan.Steps = append(plan.Steps, domain.PlannedStep{DeletionStep: step, Count: count, Sample: sample})
	}

	activeTickets, err := s.records.Count(ctx, domain.TableRepairTickets, domain.RecordFilter{
		Column:     "customer_id",
		CustomerID: customerID,
		Statuses: []string{
			string(domain.TicketStatusNew),
			string(domain.TicketStatusInProgress),
			string(domain.TicketStatusOnHold),
		},
	})
	if err != nil {
		return domain.DeletionPlan{}, apperrors.NewStorageError("count active tickets", err)
	}
	now := s.now()
	upcoming, err := s.records.Count(ctx, domain.TableAppointments, domain.RecordFilter{
		Column:     "customer_id",
		CustomerID: customerID,
		Statuses: []string{
			string(domain.AppointmentStatusScheduled),
			string(domain.AppointmentStatusConfirmed),
		},
		ScheduledAfter: &now,
	})
	if err != nil {
		return domain.DeletionPlan{}, apperrors.NewStorageError("count upcoming appointments", err)
	}

	plan.Summary = domain.DeletionSummary{
		Tickets:              counts[StepRepairTickets],
		ActiveTickets:        activeTickets,
		Appointments:         counts[StepAppointments],
		UpcomingAppointments: upcoming,
		Devices:              counts[StepCustomerDevices],
		TimeEntries:          counts[StepTimeEntries],
		Notifications:        counts[StepNotificationPreferences],
		Notes:                counts[StepTicketNotes],
		Comments:             counts[StepCustomerComments],
	}
	return plan, nil
}

// Execute deletes the customer and every dependent row, one step at a time.
// The first failing step ends the run; completed steps are not rolled back.
// The returned report is filled in even when an error is returned.
func (s *CascadeService) Execute(ctx context.Context, customerID, actorID string) (domain.DeletionReport, error) {
	unlock, err := lockEntity(ctx, s.locker, domain.EntityCustomer, customerID)
	if err != nil {
		return domain.DeletionReport{}, err
	}
	defer unlock()

	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return domain.DeletionReport{}, apperrors.NewStorageError("load customer", err)
	}
	if !exists {
		return domain.DeletionReport{}, apperrors.NewNotFound(string(domain.EntityCustomer), map[string]any{"id": customerID})
	}

	report := domain.DeletionReport{CustomerID: customerID, StartedAt: s.now()}
	logger := s.logger.With(zap.String("customer_id", customerID), zap.String("actor_id", actorID))
	logger.Info("customer deletion started")

	for _, step := range DeletionSteps(customerID) {
		rows, err := s.records.DeleteWhere(ctx, step.Table, step.Filter)
		if err != nil {
			report.Steps = append(report.Steps, domain.StepResult{
				Name:   step.Name,
				Table:  step.Table,
				Status: domain.StepFailed,
				Error:  err.Error(),
			})
			s.metrics.RecordCascadeStep(step.Name, string(domain.StepFailed), 0)
			logger.Error("deletion step failed", zap.String("step", step.Name), zap.Error(err))
			return s.fail(ctx, report, step.Name, err.Error(), actorID, apperrors.NewStorageError("delete "+step.Name, err))
		}

		report.Steps = append(report.Steps, domain.StepResult{
			Name:         step.Name,
			Table:        step.Table,
			Status:       domain.StepCompleted,
			RowsAffected: rows,
		})
		s.metrics.RecordCascadeStep(step.Name, string(domain.StepCompleted), rows)
		logger.Info("deletion step completed", zap.String("step", step.Name), zap.Int64("rows", rows))

		if step.Name == StepCustomer && rows == 0 {
			if err := s.confirmCustomerGone(ctx, customerID); err != nil {
				last := &report.Steps[len(report.Steps)-1]
				last.Status = domain.StepFailed
				last.Error = err.Error()
				return s.fail(ctx, report, step.Name, err.Error(), actorID, err)
			}
			logger.Warn("customer row already gone before final step")
		}
	}

	report.FinishedAt = s.now()
	logger.Info("customer deletion completed", zap.Int64("rows", report.TotalDeleted()))
	recordAudit(ctx, s.audit, s.logger, domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditCustomerDeleted,
		EntityKind: domain.EntityCustomer,
		EntityID:   customerID,
		Details:    reportDetails(report),
	})
	return report, nil
}

// confirmCustomerGone handles a final delete that touched no rows.
func (s *CascadeService) confirmCustomerGone(ctx context.Context, customerID string) error {
	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return apperrors.NewStorageError("recheck customer", err)
	}
	if exists {
		return apperrors.NewDeletionIncomplete(customerID, map[string]any{"step": StepCustomer})
	}
	return nil
}

func (s *CascadeService) fail(ctx context.Context, report domain.DeletionReport, step, cause, actorID string, err error) (domain.DeletionReport, error) {
	report.Failed = true
	report.FailedStep = step
	report.FailureCause = cause
	report.FinishedAt = s.now()
	recordAudit(ctx, s.audit, s.logger, domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditCustomerDeleteFailed,
		EntityKind: domain.EntityCustomer,
		EntityID:   report.CustomerID,
		Details:    reportDetails(report),
	})
	return report, err
}

func reportDetails(report domain.DeletionReport) map[string]any {
	steps := make(map[string]int64, len(report.Steps))
	for _, step := range report.Steps {
		steps[step.Name] = step.RowsAffected
	}
	details := map[string]any{
		"steps":         steps,
		"total_deleted": report.TotalDeleted(),
	}
	if report.Failed {
		details["failed_step"] = report.FailedStep
		details["failure_cause"] = report.FailureCause
	}
	return details
}
