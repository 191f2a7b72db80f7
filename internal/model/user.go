package model

import "time"

// User owns assets, maintenance types and, through its assets, schedules.
// Handlers never serialise it directly.
type User struct {
	ID           uint64
	Name         string
	Email        string // unique, stored lower-cased
	PasswordHash string // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
