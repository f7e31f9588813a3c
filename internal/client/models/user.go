// Package models defines the client-side data models of the session subsystem.
package models

import "time"

// User is the account the backend reports for the current session.
// The client never mutates it; a changed user is observed by re-fetching.
type User struct {
	ID        string
	CreatedAt time.Time
	Username  string
}

// Credential is the bearer token issued at login together with the moment
// the client stops presenting it.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the credential is no longer usable at now.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// AuthResult is produced by login and register and consumed immediately
// by the auth service to persist the credential.
type AuthResult struct {
	User      User
	Token     string
	TokenType string
}
