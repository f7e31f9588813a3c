// Package client is the transport half of the auth client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (Client) for the backend API:
//     FetchCurrentUser, Login, Register, Logout and Hello.
//  2. A JSON-over-HTTP implementation (HTTPClient) that decorates every
//     request with the stored credential and maps HTTP status codes to
//     sentinel errors.
//  3. Local database bootstrap (InitDatabase, RunMigrations) for the
//     client's SQLite cookie jar.
//
// # Error Handling
//
// Callers match conditions with errors.Is: ErrUnauthenticated,
// ErrInvalidCredentials, ErrAlreadyExists, ErrInvalidRequest, ErrUnavailable
// and ErrUnexpectedResponse. Transport failures and timeouts are always
// ErrUnavailable; callers deciding session state must treat them as
// unauthenticated.
//
// All operations accept context.Context and honor cancellation.
package client
