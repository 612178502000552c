package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
)

const maxTxRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Claim the username first; SETNX makes concurrent claims safe
	claimed, err := s.client.SetNX(ctx, s.keys.username(account.Username), string(account.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		owner, err := s.client.Get(ctx, s.keys.username(account.Username)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if owner != string(account.ID) {
			return model.ErrUsernameExists
		}
	}

	prev, err := s.GetAccount(ctx, account.ID)
	if err != nil && !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	if prev != nil && prev.Username != account.Username {
		pipe.Del(ctx, s.keys.username(prev.Username))
	}
	pipe.Set(ctx, s.keys.account(account.ID), data, 0)
	pipe.SAdd(ctx, s.keys.accounts(), string(account.ID))
	_, err = pipe.Exec(ctx)
	return err
}

// TouchLastLogin rewrites the account under WATCH so an edit landing
// between the read and the write is retried on rather than overwritten.
func (s *Storage) TouchLastLogin(ctx context.Context, id model.AccountID, at time.Time) error {
	key := s.keys.account(id)
	touch := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		var account model.Account
		if err := json.Unmarshal(data, &account); err != nil {
			return err
		}
		account.LastLogin = &at
		updated, err := json.Marshal(&account)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, touch, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	data, err := s.client.Get(ctx, s.keys.account(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	id, err := s.client.Get(ctx, s.keys.username(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return s.GetAccount(ctx, model.AccountID(id))
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	ids, err := s.client.SMembers(ctx, s.keys.accounts()).Result()
	if err != nil {
		return nil, err
	}
	accountKeys := make([]string, len(ids))
	for i, id := range ids {
		accountKeys[i] = s.keys.account(model.AccountID(id))
	}

	var accounts []*model.Account
	err = s.mget(ctx, accountKeys, func(data []byte) error {
		var a model.Account
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		accounts = append(accounts, &a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	storage.SortAccounts(accounts)
	return accounts, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	account, err := s.GetAccount(ctx, id)
	if errors.Is(err, model.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.account(id))
	pipe.Del(ctx, s.keys.username(account.Username))
	pipe.SRem(ctx, s.keys.accounts(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.player(player.ID), data, 0)
	pipe.SAdd(ctx, s.keys.players(), string(player.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.player(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// FindPlayers loads the whole roster and filters in process. Club rosters
// are small enough that secondary indexes are not worth maintaining.
func (s *Storage) FindPlayers(ctx context.Context, q model.PlayerQuery) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, s.keys.players()).Result()
	if err != nil {
		return nil, err
	}
	playerKeys := make([]string, len(ids))
	for i, id := range ids {
		playerKeys[i] = s.keys.player(model.PlayerID(id))
	}

	var players []*model.Player
	err = s.mget(ctx, playerKeys, func(data []byte) error {
		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if q.Matches(&p) {
			players = append(players, &p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.player(id))
	pipe.SRem(ctx, s.keys.players(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Activity log operations

func (s *Storage) AppendActivity(ctx context.Context, entry *model.ActivityLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.keys.activity(), data).Err()
}

func (s *Storage) RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	values, err := s.client.LRange(ctx, s.keys.activity(), int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.ActivityLogEntry, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		var e model.ActivityLogEntry
		if err := json.Unmarshal([]byte(values[i]), &e); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func (s *Storage) ClearActivity(ctx context.Context) (int, error) {
	pipe := s.client.TxPipeline()
	n := pipe.LLen(ctx, s.keys.activity())
	pipe.Del(ctx, s.keys.activity())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(n.Val()), nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keys.session(session.Token), data, ttl).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.keys.session(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.keys.session(token)).Err()
}

func (s *Storage) ClearSessions(ctx context.Context) (int, error) {
	var cleared int
	iter := s.client.Scan(ctx, 0, s.keys.sessionPattern(), 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return cleared, err
		}
		cleared += int(n)
	}
	return cleared, iter.Err()
}

// mget fetches keys in one round trip and calls fn for each value present.
// Keys removed between the index read and the fetch are skipped.
func (s *Storage) mget(ctx context.Context, keys []string, fn func([]byte) error) error {
	if len(keys) == 0 {
		return nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if err := fn([]byte(str)); err != nil {
			return err
		}
	}
	return nil
}
