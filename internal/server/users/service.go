// Package users holds the development backend's accounts: storage,
// password checks and token issuance.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Session is the outcome of a successful login or registration.
type Session struct {
	User        *User
	AccessToken string
}

type Service struct {
	repo                        Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	now                         func() time.Time
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  bcrypt.DefaultCost,
		now:                         time.Now,
	}
}

// Create stores a new account. Passwords are kept only as bcrypt hashes.
func (s *Service) Create(ctx context.Context, userName, password string, profile User) (*User, error) {
	if strings.TrimSpace(userName) == "" || password == "" {
		return nil, common.ErrorInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	profile.ID = uuid.NewString()
	profile.UserName = strings.TrimSpace(userName)
	profile.PasswordHash = hash
	profile.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	user, err := s.repo.Create(ctx, &profile)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Register creates an account from a sign-up form and signs it in. The
// account either joins TeamID or founds a new team named TeamName.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return nil, common.ErrorInvalidInput
	}
	if (req.TeamID == "") == (req.TeamName == "") {
		return nil, common.ErrorInvalidInput
	}

	teamID := req.TeamID
	if teamID != "" {
		if _, err := uuid.Parse(teamID); err != nil {
			return nil, common.ErrorInvalidInput
		}
	} else {
		teamID = uuid.NewString()
	}

	user, err := s.Create(ctx, req.Email, req.Password, User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TeamID:    teamID,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{User: user, AccessToken: token}, nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	return auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *Service) Login(ctx context.Context, userName, password string) (*Session, error) {

	user, err := s.repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{User: user, AccessToken: accessToken}, nil
}

// Authenticate resolves an access token to its user. Unknown, expired and
// malformed tokens all yield common.ErrorUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}
