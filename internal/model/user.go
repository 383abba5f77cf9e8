// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered student account.
//
// WHY PasswordHash HAS json:"-"?
// The hash must never leave the server. The "-" tag tells encoding/json to
// skip the field entirely, so even if a handler accidentally serialises a
// User, the hash is not in the response.
//
// Email is always stored lowercased: it is the unique login key, and the
// UNIQUE index on users.email is what guarantees uniqueness under concurrent
// registrations.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
