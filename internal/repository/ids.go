package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// checkID maps an id that cannot be a primary key to pgx.ErrNoRows, so
// malformed path ids read as missing rows instead of reaching Postgres.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}
	return nil
}
