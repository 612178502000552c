package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/arise-roster/internal/dependencies/clock"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
)

// Service handles login, logout and session validation
type Service struct {
	storage storage.Storage
	hasher  PasswordHasher
	clock   clock.Clock
	logger  *slog.Logger

	sessionDuration time.Duration
	// compared against when the username is unknown, so both failure
	// paths cost one hash verification
	dummyHash string
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, hasher PasswordHasher, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		logger.Warn("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}
	return &Service{
		storage:         storage,
		hasher:          hasher,
		clock:           clock,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
		dummyHash:       dummy,
	}
}

// SessionDuration is the maximum age of a session
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// Login authenticates a staff account and opens a session. role may be
// empty, in which case it is taken from the account. Unknown usernames, a
// mismatched role and a wrong password all yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string, role model.Role) (*model.Session, error) {
	if role != "" && !role.Valid() {
		return nil, model.NewValidationError("role", "invalid role")
	}

	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			s.logFailure(username, "unknown username")
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(account.PasswordHash, password) {
		s.logFailure(username, "wrong password")
		return nil, model.ErrInvalidCredentials
	}
	if role != "" && role != account.Role {
		s.logFailure(username, "role mismatch")
		return nil, model.ErrInvalidCredentials
	}
	if !account.Active() {
		s.logFailure(username, "account disabled")
		return nil, model.ErrAccountDisabled
	}

	now := s.clock.Now()
	session := &model.Session{
		Token:     generateToken(),
		UserID:    account.ID,
		Username:  account.Username,
		Name:      account.DisplayName(),
		Role:      account.Role,
		Team:      account.Team,
		Status:    account.Status,
		CreatedAt: now,
	}
	if err := s.storage.SaveSession(ctx, session, s.sessionDuration); err != nil {
		return nil, err
	}

	if err := s.storage.TouchLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to record last login",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("login succeeded",
		slog.String("username", account.Username),
		slog.String("role", string(account.Role)),
	)
	return session, nil
}

// ValidateSession resolves a token to its session. Each failure has its
// own error: ErrAuthenticationRequired when there is no session,
// ErrSessionExpired once it is older than the session duration (the
// session is deleted), and ErrAccountDisabled for a disabled account.
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, model.ErrAuthenticationRequired
	}

	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrAuthenticationRequired
		}
		return nil, err
	}

	if session.Expired(s.clock.Now(), s.sessionDuration) {
		if err := s.storage.DeleteSession(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil, model.ErrSessionExpired
	}

	if session.Status == model.StatusDisabled {
		return nil, model.ErrAccountDisabled
	}

	return session, nil
}

// Logout destroys the session; unknown tokens are ignored
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.storage.DeleteSession(ctx, token)
}

// Profile is the identity reported by /auth/me
type Profile struct {
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
	Email    *string    `json:"email"`
	Team     model.Team `json:"team"`
}

// Me returns the current profile of the session's account. Admins have no
// name or email of their own: name is the username and email is null.
func (s *Service) Me(ctx context.Context, session *model.Session) (*Profile, error) {
	if session == nil {
		return nil, model.ErrAuthenticationRequired
	}

	account, err := s.storage.GetAccount(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrAuthenticationRequired
		}
		return nil, err
	}

	profile := &Profile{
		Username: account.Username,
		Name:     account.DisplayName(),
		Role:     account.Role,
		Team:     account.Team,
	}
	if account.Role != model.RoleAdmin {
		email := account.Email
		profile.Email = &email
	}
	return profile, nil
}

func (s *Service) logFailure(username, reason string) {
	s.logger.Warn("login failed",
		slog.String("username", username),
		slog.String("reason", reason),
	)
}

// generateToken returns an opaque, URL-safe session token
func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}
