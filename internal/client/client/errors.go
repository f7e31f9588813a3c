package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the backend holds no valid session for the
	// presented credential. It is the expected answer for anonymous users.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials means the backend rejected a login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyExists means registration collided with an existing account.
	ErrAlreadyExists = errors.New("account already exists")
	// ErrInvalidRequest means the backend refused the payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnavailable covers transport failures, timeouts and 5xx answers.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnexpectedResponse means a 2xx answer could not be decoded.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Message)
}
