package storage

import (
	"context"
	"sort"
	"time"

	"github.com/mcoot/arise-roster/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations. SaveAccount returns model.ErrUsernameExists when
	// another account already holds the username.
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	DeleteAccount(ctx context.Context, id model.AccountID) error
	// TouchLastLogin sets only the last-login time, leaving concurrent edits
	// to the rest of the account intact.
	TouchLastLogin(ctx context.Context, id model.AccountID, at time.Time) error

	// Player operations. FindPlayers returns matches ordered by name.
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	FindPlayers(ctx context.Context, q model.PlayerQuery) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Activity log operations. RecentActivity returns newest first.
	AppendActivity(ctx context.Context, entry *model.ActivityLogEntry) error
	RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error)
	ClearActivity(ctx context.Context) (int, error)

	// Session operations. Backends that support expiry drop the session
	// after ttl; the auth service applies its own age check regardless.
	SaveSession(ctx context.Context, session *model.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	ClearSessions(ctx context.Context) (int, error)

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}

// SortPlayers orders players by name, then id
func SortPlayers(players []*model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
}

// SortAccounts orders accounts by role (admin, coach, assistant), then username
func SortAccounts(accounts []*model.Account) {
	rank := map[model.Role]int{model.RoleAdmin: 0, model.RoleCoach: 1, model.RoleAssistant: 2}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].Role != accounts[j].Role {
			return rank[accounts[i].Role] < rank[accounts[j].Role]
		}
		return accounts[i].Username < accounts[j].Username
	})
}
