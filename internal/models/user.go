package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values for users
const (
	RolePgAdmin    = "pg_admin"    // host managing listings, rooms and residents
	RolePgResident = "pg_resident" // tenant with a linked resident record
)

// User represents a host or resident account credential
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"` // pg_admin or pg_resident
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsValidRole reports whether the given role is one the system knows
func IsValidRole(role string) bool {
	return role == RolePgAdmin || role == RolePgResident
}
