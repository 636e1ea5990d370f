package domain

// EntityKind names the entities whose assignee and status the orchestrators mutate.
type EntityKind string

const (
	EntityTicket      EntityKind = "ticket"
	EntityAppointment EntityKind = "appointment"
	EntityCustomer    EntityKind = "customer"
)

// Valid reports whether k is one of the mutable entity kinds.
func (k EntityKind) Valid() bool {
	return k == EntityTicket || k == EntityAppointment
}
