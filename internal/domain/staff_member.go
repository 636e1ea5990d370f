package domain

import "time"

// StaffRole enumerates shop operator roles.
type StaffRole string

const (
	StaffRoleTechnician StaffRole = "technician"
	StaffRoleManager    StaffRole = "manager"
	StaffRoleAdmin      StaffRole = "admin"
)

// StaffMember models a technician or administrator that work can be assigned to.
type StaffMember struct {
	ID        string
	Name      string
	Email     string
	Role      StaffRole
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
