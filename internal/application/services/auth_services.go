package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/user"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", security.MinPasswordLength)
)

// AuthResult holds authentication result data
type AuthResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// AuthService handles signup, login and JWT validation.
type AuthService struct {
	userRepo    user.Repository
	jwtSecret   string
	tokenTTL    time.Duration
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo user.Repository, jwtSecret string, tokenTTL time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// Signup creates an account and signs the caller in.
func (a *AuthService) Signup(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	marker := a.perfTracker.StartOperationWithContext(ctx, "auth:signup", "")
	defer marker.Complete()

	address, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		marker.SetError(ErrInvalidEmail)
		return nil, ErrInvalidEmail
	}
	if len(password) < security.MinPasswordLength {
		marker.SetError(ErrWeakPassword)
		return nil, ErrWeakPassword
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	u := &user.User{
		ID:           security.GenerateULID(),
		Email:        strings.ToLower(address.Address),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.userRepo.Create(ctx, u); err != nil {
		marker.SetError(err)
		a.logger.LogAuthOperation("signup", "", false, map[string]any{"reason": err.Error()})
		return nil, err
	}

	a.logger.LogAuthOperation("signup", u.ID, true, nil)
	return a.issue(u)
}

// Login checks the password and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	marker := a.perfTracker.StartOperationWithContext(ctx, "auth:login", "")
	defer marker.Complete()

	u, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			marker.SetError(ErrInvalidCredentials)
			a.logger.LogAuthOperation("login", "", false, map[string]any{"reason": "unknown email"})
			return nil, ErrInvalidCredentials
		}
		marker.SetError(err)
		return nil, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		marker.SetError(ErrInvalidCredentials)
		a.logger.LogAuthOperation("login", u.ID, false, map[string]any{"reason": "password mismatch"})
		return nil, ErrInvalidCredentials
	}

	a.logger.LogAuthOperation("login", u.ID, true, nil)
	return a.issue(u)
}

// ValidateToken decodes a bearer token into a session.
func (a *AuthService) ValidateToken(token string) (*user.Session, error) {
	claims, err := security.ValidateJWT(token, a.jwtSecret)
	if err != nil {
		return nil, err
	}
	return security.GetSessionFromClaims(claims)
}

// CurrentUser loads the account behind a session.
func (a *AuthService) CurrentUser(ctx context.Context, session *user.Session) (*user.User, error) {
	return a.userRepo.FindByID(ctx, session.UserID)
}

func (a *AuthService) issue(u *user.User) (*AuthResult, error) {
	token, expiresAt, err := security.GenerateSessionToken(u, a.jwtSecret, a.tokenTTL)
	if err != nil {
		a.logger.Auth().Error("Failed to sign session token", "userId", u.ID, "error", err.Error())
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
