package model

import "time"

// Roles stored in users.role and carried in the JWT "role" claim.
// Owners publish desks; renters book them.
const (
	RoleOwner  = "OWNER"
	RoleRenter = "RENTER"
)

// User mirrors the users table.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (stored lowercased)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role (OWNER or RENTER)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
