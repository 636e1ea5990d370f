package domain

import "time"

// Table names a category of rows removed during customer deletion.
type Table string

const (
	TableTimeEntries             Table = "time_entries"
	TableTicketNotes             Table = "ticket_notes"
	TableRepairTickets           Table = "repair_tickets"
	TableAppointments            Table = "appointments"
	TableCustomerDevices         Table = "customer_devices"
	TableNotificationPreferences Table = "notification_preferences"
	TableComments                Table = "comments"
	TableCustomers               Table = "customers"
)

// RecordFilter selects the rows of a table that belong to one customer.
//
// When ViaTickets is set, Column is matched against the ids of the customer's
// repair tickets instead of the customer id itself.
type RecordFilter struct {
	Column     string
	CustomerID string
	ViaTickets bool
	EntityType string

	// Optional narrowing used only for preview sub-counts.
	Statuses       []string
	ScheduledAfter *time.Time
}

// DeletionStep is one ordered entry of a DeletionPlan.
type DeletionStep struct {
	Name   string
	Table  Table
	Filter RecordFilter
}

// RecordSample is a short display row for the deletion preview.
type RecordSample struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PlannedStep carries a step with the rows it would remove right now.
type PlannedStep struct {
	DeletionStep
	Count  int64
	Sample []RecordSample
}

// DeletionSummary holds the per-category counts shown before confirming a delete.
type DeletionSummary struct {
	Tickets              int64 `json:"tickets"`
	ActiveTickets        int64 `json:"active_tickets"`
	Appointments         int64 `json:"appointments"`
	UpcomingAppointments int64 `json:"upcoming_appointments"`
	Devices              int64 `json:"devices"`
	TimeEntries          int64 `json:"time_entries"`
	Notifications        int64 `json:"notifications"`
	Notes                int64 `json:"notes"`
	Comments             int64 `json:"comments"`
}

// DeletionPlan is computed per request and never stored.
type DeletionPlan struct {
	CustomerID string
	Customer   *Customer
	Steps      []PlannedStep
	Summary    DeletionSummary
}

// StepStatus records the outcome of an attempted step.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StepResult is the report line for one attempted step.
type StepResult struct {
	Name         string     `json:"name"`
	Table        Table      `json:"table"`
	Status       StepStatus `json:"status"`
	RowsAffected int64      `json:"rows_affected"`
	Error        string     `json:"error,omitempty"`
}

// DeletionReport lists attempted steps in order. Steps after a failure are absent.
type DeletionReport struct {
	CustomerID   string       `json:"customer_id"`
	Steps        []StepResult `json:"steps"`
	Failed       bool         `json:"failed"`
	FailedStep   string       `json:"failed_step,omitempty"`
	FailureCause string       `json:"failure_cause,omitempty"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
}

// TotalDeleted sums rows removed by the completed steps.
func (r DeletionReport) TotalDeleted() int64 {
	var total int64
	for _, step := range r.Steps {
		if step.Status == StepCompleted {
			total += step.RowsAffected
		}
	}
	return total
}

// Step returns the result for the named step, if it was attempted.
func (r DeletionReport) Step(name string) (StepResult, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return StepResult{}, false
}
