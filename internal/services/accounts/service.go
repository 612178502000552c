package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/arise-roster/internal/dependencies/clock"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
	"github.com/mcoot/arise-roster/internal/services/activity"
	"github.com/mcoot/arise-roster/internal/services/auth"
	"github.com/mcoot/arise-roster/internal/storage"
	"github.com/mcoot/arise-roster/internal/validation"
)

// Publisher receives change events after successful mutations
type Publisher interface {
	Publish(event model.Event)
}

// Service manages staff accounts. Every operation is admin-only.
type Service struct {
	storage   storage.Storage
	hasher    auth.PasswordHasher
	publisher Publisher
	activity  *activity.Service
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new accounts Service
func New(
	storage storage.Storage,
	hasher auth.PasswordHasher,
	publisher Publisher,
	activity *activity.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		hasher:    hasher,
		publisher: publisher,
		activity:  activity,
		clock:     clock,
		logger:    logger,
	}
}

// SystemSession is the identity used by startup bootstrap and maintenance
// commands that act without a login.
func SystemSession() *model.Session {
	return &model.Session{
		UserID:   "system",
		Username: "system",
		Name:     "system",
		Role:     model.RoleAdmin,
		Status:   model.StatusActive,
	}
}

// CreateInput describes a new account
type CreateInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role" validate:"required,role"`
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Team     string `json:"team"`
}

// UpdateInput changes the provided fields of an account. Changing Role
// converts the account in place.
type UpdateInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Team     *string `json:"team"`
	Status   *string `json:"status"`
}

// List returns every account, admins first
func (s *Service) List(ctx context.Context, session *model.Session) ([]model.Summary, error) {
	if err := authorize(session); err != nil {
		return nil, err
	}
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.Summary, len(accounts))
	for i, a := range accounts {
		summaries[i] = a.Summary()
	}
	return summaries, nil
}

// Create adds an account. Usernames are unique across all roles.
func (s *Service) Create(ctx context.Context, session *model.Session, in CreateInput) (*model.Summary, error) {
	if err := authorize(session); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(ctx, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.clock.Now()
	account := &model.Account{
		ID:           model.AccountID(uuid.New().String()),
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if account.Team, err = model.ParseTeam(in.Team); err != nil {
		return nil, err
	}
	account.ApplyRole(model.Role(in.Role))
	if err := checkTeam(account); err != nil {
		return nil, err
	}

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	summary := account.Summary()
	s.publish(model.EventAccountCreated, summary)
	s.activity.RecordQuietly(ctx, session, "Created account", fmt.Sprintf("%s (%s)", account.Username, account.Role))
	s.logger.Info("account created",
		slog.String("username", account.Username),
		slog.String("role", string(account.Role)),
		slog.String("by", session.Username),
	)
	return &summary, nil
}

// Update applies the provided fields to an account
func (s *Service) Update(ctx context.Context, session *model.Session, id model.AccountID, in UpdateInput) (*model.Summary, error) {
	if err := authorize(session); err != nil {
		return nil, err
	}

	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, model.NewValidationError("username", "is required")
		}
		if username != account.Username {
			if err := s.ensureUsernameFree(ctx, username, account.ID); err != nil {
				return nil, err
			}
			account.Username = username
		}
	}
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		if err := validation.CheckPassword(*in.Password); err != nil {
			return nil, err
		}
		if account.PasswordHash, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}
	if in.Name != nil {
		account.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validation.Email("email", email); err != nil {
			return nil, err
		}
		account.Email = email
	}
	if in.Team != nil {
		if account.Team, err = model.ParseTeam(*in.Team); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		status := model.AccountStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if status != model.StatusActive && status != model.StatusDisabled {
			return nil, model.NewValidationError("status", "must be active or disabled")
		}
		if status == model.StatusDisabled && account.ID == session.UserID {
			return nil, model.NewValidationError("status", "cannot disable your own account")
		}
		account.Status = status
	}

	role := account.Role
	if in.Role != nil {
		role = model.Role(strings.TrimSpace(*in.Role))
		if !role.Valid() {
			return nil, model.NewValidationError("role", "must be one of admin, coach, assistant")
		}
	}
	account.ApplyRole(role)
	if err := checkTeam(account); err != nil {
		return nil, err
	}

	account.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	summary := account.Summary()
	s.publish(model.EventAccountUpdated, summary)
	s.activity.RecordQuietly(ctx, session, "Updated account", account.Username)
	return &summary, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, session *model.Session, id model.AccountID) error {
	if err := authorize(session); err != nil {
		return err
	}
	if id == session.UserID {
		return model.NewValidationError("id", "cannot delete your own account")
	}

	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteAccount(ctx, id); err != nil {
		return err
	}

	s.publish(model.EventAccountDeleted, model.DeletedRef{ID: string(id)})
	s.activity.RecordQuietly(ctx, session, "Deleted account", fmt.Sprintf("%s (%s)", account.Username, account.Role))
	return nil
}

// SetPassword replaces the password of the account with the given username
func (s *Service) SetPassword(ctx context.Context, session *model.Session, username, password string) error {
	if err := authorize(session); err != nil {
		return err
	}
	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		return err
	}
	_, err = s.Update(ctx, session, account.ID, UpdateInput{Password: &password})
	return err
}

// Bootstrap creates an admin account when none exists. It reports whether
// an account was created.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if a.Role == model.RoleAdmin {
			return false, nil
		}
	}

	_, err = s.Create(ctx, SystemSession(), CreateInput{
		Username: username,
		Password: password,
		Role:     string(model.RoleAdmin),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string, self model.AccountID) error {
	existing, err := s.storage.GetAccountByUsername(ctx, username)
	if err == nil && existing.ID != self {
		return model.ErrUsernameExists
	}
	if err != nil && !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}
	return nil
}

func (s *Service) publish(kind model.EventKind, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(model.Event{Kind: kind, Payload: payload, Timestamp: s.clock.Now()})
}

func checkTeam(a *model.Account) error {
	if a.Role == model.RoleAssistant && a.Team == model.NoTeam {
		return model.NewValidationError("team", "is required for assistant coaches")
	}
	return nil
}

func authorize(session *model.Session) error {
	role, team := policy.Anonymous, model.NoTeam
	if session != nil {
		role, team = session.Role, session.Team
	}
	if d := policy.Decide(role, team, policy.OpAccountsManage, nil); !d.Allowed() {
		return d.Err
	}
	return nil
}
