// Package cookies persists the client's cookie jar in SQLite.
//
// Rows are keyed by (name, path) like browser cookies. Expiry is stored as
// unix milliseconds; the repository does not interpret it, so an expired row
// is still returned by Get. Logical expiry is applied by the credential store.
//
// Get returns (nil, nil) when no row exists.
package cookies
