// Package common contains constants and sentinel errors shared by the
// client shell and the development backend.
package common

import "time"

// AccessTokenCookieName is the cookie that carries the bearer token between
// the client shell and the backend.
const AccessTokenCookieName = "access_token"

// AccessTokenTTL is how long the client keeps an issued access token.
const AccessTokenTTL = time.Hour

// BearerTokenType is the token type the backend reports on login.
const BearerTokenType = "Bearer"
