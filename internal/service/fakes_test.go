package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/locking"
	"github.com/spec-kit/repair-shop/internal/repository"
	"github.com/spec-kit/repair-shop/internal/workflow"
)

var errStorageDown = errors.New("connection reset by peer")

func strPtr(v string) *string { return &v }

// memStore backs the ticket, appointment and staff fakes.
type memStore struct {
	mu           sync.Mutex
	tickets      map[string]domain.RepairTicket
	appointments map[string]domain.Appointment
	staff        map[string]domain.StaffMember
	updateErr    error
	updates      int
}

func newMemStore() *memStore {
	s := &memStore{
		tickets:      map[string]domain.RepairTicket{},
		appointments: map[string]domain.Appointment{},
		staff:        map[string]domain.StaffMember{},
	}
	for _, id := range []string{"tech-A", "tech-B", "admin-1"} {
		s.staff[id] = domain.StaffMember{ID: id, Name: id, Role: domain.StaffRoleTechnician, Active: true}
	}
	return s
}

func (s *memStore) ticket(id string) domain.RepairTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets[id]
}

func (s *memStore) appointment(id string) (domain.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appointments[id]
	return appt, ok
}

type fakeTickets struct{ *memStore }

func (f fakeTickets) GetByID(_ context.Context, id string) (*domain.RepairTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f fakeTickets) UpdateFields(_ context.Context, id string, fields repository.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for column, value := range fields {
		switch column {
		case repository.TicketColumnAssignee:
			ticket.AssigneeID = copyStr(value.(*string))
		case repository.TicketColumnStatus:
			ticket.Status = domain.TicketStatus(value.(string))
		case repository.TicketColumnStatusReason:
			ticket.StatusReason = value.(string)
		case repository.TicketColumnCompletedAt:
			ticket.CompletedAt = value.(*time.Time)
		}
	}
	f.tickets[id] = ticket
	f.memStore.updates++
	return nil
}

type fakeAppointments struct{ *memStore }

func (f fakeAppointments) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &appt, nil
}

func (f fakeAppointments) UpdateFields(_ context.Context, id string, fields repository.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	appt, ok := f.appointments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for column, value := range fields {
		switch column {
		case repository.AppointmentColumnAssignee:
			appt.AssigneeID = copyStr(value.(*string))
		case repository.AppointmentColumnStatus:
			appt.Status = domain.AppointmentStatus(value.(string))
		case repository.AppointmentColumnCancellationReason:
			appt.CancellationReason = value.(string)
		}
	}
	f.appointments[id] = appt
	f.memStore.updates++
	return nil
}

func (f fakeAppointments) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	appt, ok := f.appointments[id]
	if !ok || appt.Converted() {
		return pgx.ErrNoRows
	}
	delete(f.appointments, id)
	f.memStore.updates++
	return nil
}

type fakeStaff struct{ *memStore }

func (f fakeStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &member, nil
}

func (f fakeStaff) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StaffMember
	for _, member := range f.staff {
		if filter.Active != nil && member.Active != *filter.Active {
			continue
		}
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyStr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
}

func (f *fakeAudit) Record(_ context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) actions() []domain.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.Action)
	}
	return out
}

// harness wires the single-entity orchestrators over one memStore.
type harness struct {
	store      *memStore
	notifier   *fakeNotifier
	audit      *fakeAudit
	locker     *locking.LocalLocker
	assignment *AssignmentService
	lifecycle  *LifecycleService
}

func newHarness() *harness {
	h := &harness{
		store:    newMemStore(),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		locker:   locking.NewLocalLocker(50 * time.Millisecond),
	}
	h.assignment = NewAssignmentService(AssignmentDependencies{
		TicketRepo:      fakeTickets{h.store},
		AppointmentRepo: fakeAppointments{h.store},
		StaffRepo:       fakeStaff{h.store},
		Authority:       workflow.NewAuthority(),
		Locker:          h.locker,
		Notifier:        h.notifier,
		Audit:           h.audit,
	})
	h.lifecycle = NewLifecycleService(LifecycleDependencies{
		TicketRepo:      fakeTickets{h.store},
		AppointmentRepo: fakeAppointments{h.store},
		Authority:       workflow.NewAuthority(),
		Locker:          h.locker,
		Notifier:        h.notifier,
		Audit:           h.audit,
		Clock:           func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) },
	})
	return h
}

func (h *harness) addTicket(id string, status domain.TicketStatus, assignee *string) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.tickets[id] = domain.RepairTicket{ID: id, CustomerID: "cust-1", Title: "Cracked screen", Status: status, AssigneeID: assignee}
}

func (h *harness) addAppointment(id string, status domain.AppointmentStatus, assignee, convertedTo *string) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.appointments[id] = domain.Appointment{
		ID:                  id,
		CustomerID:          "cust-1",
		Status:              status,
		AssigneeID:          assignee,
		ConvertedToTicketID: convertedTo,
		ScheduledAt:         time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

// fakeRow is one row of any cascade table.
type fakeRow struct {
	id          string
	label       string
	customerID  string
	ticketID    string
	entityType  string
	entityID    string
	status      string
	scheduledAt time.Time
}

// fakeRecords implements CascadeRepository and CustomerRepository over the same rows.
type fakeRecords struct {
	mu           sync.Mutex
	rows         map[domain.Table][]fakeRow
	failOn       map[domain.Table]error
	ignoreDelete map[domain.Table]bool
	beforeDelete func(table domain.Table)
	deleted      []domain.Table
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		rows:         map[domain.Table][]fakeRow{},
		failOn:       map[domain.Table]error{},
		ignoreDelete: map[domain.Table]bool{},
	}
}

func (f *fakeRecords) add(table domain.Table, row fakeRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[table] = append(f.rows[table], row)
}

func (f *fakeRecords) size(table domain.Table) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[table])
}

func (f *fakeRecords) matches(row fakeRow, filter domain.RecordFilter) bool {
	var value string
	switch filter.Column {
	case "customer_id":
		value = row.customerID
	case "ticket_id":
		value = row.ticketID
	case "entity_id":
		value = row.entityID
	case "id":
		value = row.id
	}
	if filter.ViaTickets {
		found := false
		for _, ticket := range f.rows[domain.TableRepairTickets] {
			if ticket.customerID == filter.CustomerID && ticket.id == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	} else if value != filter.CustomerID {
		return false
	}
	if filter.EntityType != "" && row.entityType != filter.EntityType {
		return false
	}
	if len(filter.Statuses) > 0 {
		ok := false
		for _, status := range filter.Statuses {
			if status == row.status {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if filter.ScheduledAfter != nil && row.scheduledAt.Before(*filter.ScheduledAfter) {
		return false
	}
	return true
}

func (f *fakeRecords) Count(_ context.Context, table domain.Table, filter domain.RecordFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows[table] {
		if f.matches(row, filter) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRecords) Sample(_ context.Context, table domain.Table, filter domain.RecordFilter, limit int) ([]domain.RecordSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	samples := []domain.RecordSample{}
	for _, row := range f.rows[table] {
		if len(samples) == limit {
			break
		}
		if f.matches(row, filter) {
			samples = append(samples, domain.RecordSample{ID: row.id, Label: row.label})
		}
	}
	return samples, nil
}

func (f *fakeRecords) DeleteWhere(_ context.Context, table domain.Table, filter domain.RecordFilter) (int64, error) {
	if f.beforeDelete != nil {
		f.beforeDelete(table)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, table)
	if err := f.failOn[table]; err != nil {
		return 0, err
	}
	if f.ignoreDelete[table] {
		return 0, nil
	}
	kept := f.rows[table][:0]
	var removed int64
	for _, row := range f.rows[table] {
		if f.matches(row, filter) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.rows[table] = kept
	return removed, nil
}

func (f *fakeRecords) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows[domain.TableCustomers] {
		if row.id == id {
			return &domain.Customer{ID: row.id, Name: row.label}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRecords) Exists(ctx context.Context, id string) (bool, error) {
	_, err := f.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
