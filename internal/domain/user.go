package domain

import "time"

// User is the journal owner's account. The journal is single-tenant: trades
// are not scoped per user, the account only gates access to the API.
type User struct {
	ID             int64
	Email          string // Unique login identifier
	Name           string
	HashedPassword string // bcrypt hash, never exposed over the API
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
