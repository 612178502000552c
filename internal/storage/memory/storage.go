package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
	players       map[model.PlayerID]*model.Player
	activity      []*model.ActivityLogEntry
	sessions      map[string]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		usernameIndex: make(map[string]model.AccountID),
		players:       make(map[model.PlayerID]*model.Player),
		sessions:      make(map[string]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.usernameIndex[account.Username]; ok && owner != account.ID {
		return model.ErrUsernameExists
	}
	if prev, ok := s.accounts[account.ID]; ok && prev.Username != account.Username {
		delete(s.usernameIndex, prev.Username)
	}

	a := *account
	s.accounts[account.ID] = &a
	s.usernameIndex[account.Username] = account.ID
	return nil
}

func (s *Storage) TouchLastLogin(ctx context.Context, id model.AccountID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	a.LastLogin = &at
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.GetAccount(ctx, id)
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		c := *a
		accounts = append(accounts, &c)
	}
	storage.SortAccounts(accounts)
	return accounts, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		delete(s.usernameIndex, a.Username)
		delete(s.accounts, id)
	}
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (s *Storage) FindPlayers(ctx context.Context, q model.PlayerQuery) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.Player
	for _, p := range s.players {
		if q.Matches(p) {
			players = append(players, p.Clone())
		}
	}
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Activity log operations

func (s *Storage) AppendActivity(ctx context.Context, entry *model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	s.activity = append(s.activity, &e)
	return nil
}

func (s *Storage) RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*model.ActivityLogEntry, 0, limit)
	for i := len(s.activity) - 1; i >= 0 && len(entries) < limit; i-- {
		e := *s.activity[i]
		entries = append(entries, &e)
	}
	return entries, nil
}

func (s *Storage) ClearActivity(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.activity)
	s.activity = nil
	return n, nil
}

// Session operations. The memory backend keeps sessions until they are
// deleted; expiry is left to the auth service.

func (s *Storage) SaveSession(ctx context.Context, session *model.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.Token] = &c
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	c := *sess
	return &c, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Storage) ClearSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.sessions)
	s.sessions = make(map[string]*model.Session)
	return n, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
