package users

import "time"

type User struct {
	ID           string
	UserName     string
	FirstName    string
	LastName     string
	TeamID       string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RegisterRequest is a sign-up payload. Email becomes the user name.
type RegisterRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	TeamID    string
	TeamName  string
}
