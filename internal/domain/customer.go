package domain

import "time"

// Customer owns tickets, appointments, devices, notification preferences and comments by reference.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
