package activity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/segmentio/ksuid"

	"github.com/mcoot/arise-roster/internal/dependencies/clock"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
	"github.com/mcoot/arise-roster/internal/storage"
	"github.com/mcoot/arise-roster/internal/validation"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Service appends to and reads the activity log
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new activity Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// LogInput is an entry submitted explicitly by a client
type LogInput struct {
	Activity string `json:"activity" validate:"required,max=200"`
	Details  string `json:"details" validate:"max=2000"`
}

// Log records a client-submitted entry for the session's user
func (s *Service) Log(ctx context.Context, session *model.Session, in LogInput) (*model.ActivityLogEntry, error) {
	if err := authorize(session, policy.OpActivityWrite); err != nil {
		return nil, err
	}
	in.Activity = strings.TrimSpace(in.Activity)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.Record(ctx, session, in.Activity, in.Details)
}

// Record appends an entry attributed to the session's user. The user name
// is denormalised from the session.
func (s *Service) Record(ctx context.Context, session *model.Session, activity, details string) (*model.ActivityLogEntry, error) {
	entry := &model.ActivityLogEntry{
		ID:        ksuid.New().String(),
		UserID:    session.UserID,
		UserRole:  session.Role,
		UserName:  session.Name,
		Activity:  activity,
		Details:   details,
		Timestamp: s.clock.Now(),
	}
	if entry.UserName == "" {
		entry.UserName = session.Username
	}
	if err := s.storage.AppendActivity(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordQuietly records an entry after a mutation that has already
// succeeded; failures are logged rather than returned.
func (s *Service) RecordQuietly(ctx context.Context, session *model.Session, activity, details string) {
	if _, err := s.Record(ctx, session, activity, details); err != nil {
		s.logger.Warn("failed to record activity",
			slog.String("activity", activity),
			slog.String("error", err.Error()),
		)
	}
}

// Recent returns up to limit entries, newest first. A non-positive limit
// means DefaultLimit; limits above MaxLimit are capped.
func (s *Service) Recent(ctx context.Context, session *model.Session, limit int) ([]*model.ActivityLogEntry, error) {
	if err := authorize(session, policy.OpActivityRead); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.storage.RecentActivity(ctx, limit)
}

func authorize(session *model.Session, op policy.Operation) error {
	role, team := policy.Anonymous, model.NoTeam
	if session != nil {
		role, team = session.Role, session.Team
	}
	if d := policy.Decide(role, team, op, nil); !d.Allowed() {
		return d.Err
	}
	return nil
}
