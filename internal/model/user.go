// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account. PasswordHash is the argon2id
// PHC string and never crosses the API boundary.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller attached to a request context
// by the auth middleware.
type Identity struct {
	UserID string
	Email  string
}
