package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

type userResponse struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Username  string `json:"username"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
}

type helloRequest struct {
	Name string `json:"name"`
}

type helloResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{ID: u.ID, CreatedAt: u.CreatedAt.UnixMilli(), Username: u.UserName}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidInput, err)
	}
	return nil
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.tokenValidityDuration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeSession(w http.ResponseWriter, status int, sess *users.Session) {
	s.setTokenCookie(w, sess.AccessToken)
	writeJSON(w, status, authResponse{
		AccessToken: sess.AccessToken,
		TokenType:   common.BearerTokenType,
		User:        toUserResponse(sess.User),
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	sess, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Info(ctx, "Login rejected", "username", req.Username)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
			return
		}
		s.logger.Error(ctx, "login", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	s.logger.Info(ctx, "Logged in", "username", sess.User.UserName)
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	sess, err := s.users.Register(ctx, users.RegisterRequest{
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  req.Password,
		TeamID:    strings.TrimSpace(req.TeamID),
		TeamName:  strings.TrimSpace(req.TeamName),
	})
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "account already exists")
		return
	case errors.Is(err, common.ErrorInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid registration")
		return
	default:
		s.logger.Error(ctx, "register", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	s.logger.Info(ctx, "Registered", "username", sess.User.UserName)
	s.writeSession(w, http.StatusCreated, sess)
}

// Logout expires the token cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) Hello(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var req helloRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed body")
			return
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = user.UserName
	}
	writeJSON(w, http.StatusOK, helloResponse{Message: fmt.Sprintf("Hello, %s!", name)})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
