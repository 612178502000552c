package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/arise-roster/internal/dependencies/clock"
	"github.com/mcoot/arise-roster/internal/dependencies/random"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
	"github.com/mcoot/arise-roster/internal/services/activity"
	"github.com/mcoot/arise-roster/internal/storage"
)

// surrogateAttempts bounds retries when a derived nccRef is already taken
const surrogateAttempts = 5

// Publisher receives change events after successful mutations
type Publisher interface {
	Publish(event model.Event)
}

// Service applies the authorization policy to roster reads and writes,
// persists the result and publishes change events.
type Service struct {
	storage   storage.Storage
	publisher Publisher
	activity  *activity.Service
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// New creates a new roster Service
func New(
	storage storage.Storage,
	publisher Publisher,
	activity *activity.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		publisher: publisher,
		activity:  activity,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// Option adjusts a single mutation
type Option func(*options)

type options struct {
	skipActivity bool
}

// WithoutActivity suppresses the activity log entry, for callers that
// record one summary entry for a batch
func WithoutActivity() Option {
	return func(o *options) { o.skipActivity = true }
}

func collect(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// List returns the roster visible to the session; nil means anonymous
func (s *Service) List(ctx context.Context, session *model.Session) ([]*model.Player, error) {
	scope := policy.ScopeFor(session)
	players, err := s.storage.FindPlayers(ctx, scope.Query(model.PlayerQuery{}))
	if err != nil {
		return nil, err
	}
	return scope.Filter(players), nil
}

// FindByRef returns the player with the given nccRef within the session's
// scope. When several players share a reference the first by name wins.
func (s *Service) FindByRef(ctx context.Context, session *model.Session, nccRef string) (*model.Player, error) {
	scope := policy.ScopeFor(session)
	players, err := s.storage.FindPlayers(ctx, scope.Query(model.PlayerQuery{NCCRef: strings.TrimSpace(nccRef)}))
	if err != nil {
		return nil, err
	}
	players = scope.Filter(players)
	if len(players) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return players[0], nil
}

// Get returns a single player. A player outside an assistant's team is
// reported as not found.
func (s *Service) Get(ctx context.Context, session *model.Session, id model.PlayerID) (*model.Player, error) {
	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.ScopeFor(session).Allows(p.Team) {
		return nil, model.ErrPlayerNotFound
	}
	return p, nil
}

// Match finds an existing player by exact name, then by nccRef, ignoring
// scope. Callers must authorize any write against the returned record.
func (s *Service) Match(ctx context.Context, name, nccRef string) (*model.Player, error) {
	if name != "" {
		players, err := s.storage.FindPlayers(ctx, model.PlayerQuery{Name: name})
		if err != nil {
			return nil, err
		}
		if len(players) > 0 {
			return players[0], nil
		}
	}
	if nccRef != "" && !model.IsNCCRefSentinel(nccRef) {
		players, err := s.storage.FindPlayers(ctx, model.PlayerQuery{NCCRef: nccRef})
		if err != nil {
			return nil, err
		}
		if len(players) > 0 {
			return players[0], nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

// Create adds a player. Assistants may only add to their own team, which
// is also the default when no team is given.
func (s *Service) Create(ctx context.Context, session *model.Session, in PlayerInput, opts ...Option) (*model.Player, error) {
	if session == nil {
		return nil, model.ErrAuthenticationRequired
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}

	var requested *model.Team
	if in.Team != nil {
		t, err := model.ParseTeam(*in.Team)
		if err != nil {
			return nil, err
		}
		requested = &t
	}
	d := policy.Decide(session.Role, session.Team, policy.OpRosterCreate, requested)
	if !d.Allowed() {
		s.logForbidden(session, "create", d.Err)
		return nil, d.Err
	}

	p := &model.Player{
		ID:        model.PlayerID(uuid.New().String()),
		Team:      d.Team,
		CreatedAt: s.clock.Now(),
	}
	in.apply(p)
	if in.NCCRef != nil {
		ref, err := s.resolveNCCRef(ctx, *in.NCCRef, p.Name)
		if err != nil {
			return nil, err
		}
		p.NCCRef = ref
	}

	if err := s.storage.SavePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("saving player: %w", err)
	}

	s.publish(model.EventPlayerCreated, p.Clone())
	if !collect(opts).skipActivity {
		s.activity.RecordQuietly(ctx, session, "Added player", fmt.Sprintf("%s (%s)", p.Name, teamLabel(p.Team)))
	}
	return p, nil
}

// Update applies the provided fields to a player. Authorization checks the
// player's current team; a permitted caller may move the player to any
// valid team.
func (s *Service) Update(ctx context.Context, session *model.Session, id model.PlayerID, in PlayerInput, opts ...Option) (*model.Player, error) {
	if session == nil {
		return nil, model.ErrAuthenticationRequired
	}

	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	current := p.Team
	if d := policy.Decide(session.Role, session.Team, policy.OpRosterUpdate, &current); !d.Allowed() {
		s.logForbidden(session, "update", d.Err)
		return nil, d.Err
	}

	if err := in.validate(false); err != nil {
		return nil, err
	}
	if in.Team != nil {
		dest, err := policy.DestinationTeam(session.Role, *in.Team)
		if err != nil {
			return nil, err
		}
		p.Team = dest
	}

	in.apply(p)
	if in.NCCRef != nil {
		ref, err := s.resolveNCCRef(ctx, *in.NCCRef, p.Name)
		if err != nil {
			return nil, err
		}
		p.NCCRef = ref
	}

	if err := s.storage.SavePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("saving player: %w", err)
	}

	s.publish(model.EventPlayerUpdated, p.Clone())
	if !collect(opts).skipActivity {
		details := p.Name
		if current.Normalized() != p.Team.Normalized() {
			details = fmt.Sprintf("%s (moved %s -> %s)", p.Name, teamLabel(current), teamLabel(p.Team))
		}
		s.activity.RecordQuietly(ctx, session, "Updated player", details)
	}
	return p, nil
}

// Delete removes a player the session may manage
func (s *Service) Delete(ctx context.Context, session *model.Session, id model.PlayerID) error {
	if session == nil {
		return model.ErrAuthenticationRequired
	}

	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	current := p.Team
	if d := policy.Decide(session.Role, session.Team, policy.OpRosterDelete, &current); !d.Allowed() {
		s.logForbidden(session, "delete", d.Err)
		return d.Err
	}

	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}

	s.publish(model.EventPlayerDeleted, model.DeletedRef{ID: string(id)})
	s.activity.RecordQuietly(ctx, session, "Deleted player", fmt.Sprintf("%s (%s)", p.Name, teamLabel(p.Team)))
	return nil
}

// resolveNCCRef trims ref and replaces the "not provided" sentinel with a
// reference derived from the surname, retrying if the derived value is taken
func (s *Service) resolveNCCRef(ctx context.Context, ref, name string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !model.IsNCCRefSentinel(ref) {
		return ref, nil
	}

	var candidate string
	for i := 0; i < surrogateAttempts; i++ {
		candidate = model.SurrogateNCCRef(name, s.random.Intn(1000000))
		existing, err := s.storage.FindPlayers(ctx, model.PlayerQuery{NCCRef: candidate})
		if err != nil {
			return "", err
		}
		if len(existing) == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("could not derive an unused nccRef")
}

func (s *Service) publish(kind model.EventKind, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(model.Event{Kind: kind, Payload: payload, Timestamp: s.clock.Now()})
}

func (s *Service) logForbidden(session *model.Session, action string, err error) {
	s.logger.Warn("roster access denied",
		slog.String("username", session.Username),
		slog.String("role", string(session.Role)),
		slog.String("team", string(session.Team)),
		slog.String("action", action),
		slog.String("reason", err.Error()),
	)
}

func teamLabel(t model.Team) string {
	if t == model.NoTeam {
		return "no team"
	}
	return string(t)
}
