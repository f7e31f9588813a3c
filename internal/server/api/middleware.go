package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

type ctxKey string

const userKey ctxKey = "user"

// accessToken reads the bearer token from the Authorization header, falling
// back to the access_token cookie.
func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, common.BearerTokenType) {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireUser rejects requests without a valid access token and stores the
// resolved user in the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := accessToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "missing token")
			return
		}

		user, err := s.users.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				s.logger.Debug(ctx, "rejected token", "error", err)
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid token")
				return
			}
			s.logger.Error(ctx, "authenticate", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userKey, user)))
	})
}

func userFromContext(ctx context.Context) (*users.User, bool) {
	u, ok := ctx.Value(userKey).(*users.User)
	return u, ok && u != nil
}
