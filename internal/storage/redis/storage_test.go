package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
	"github.com/mcoot/arise-roster/internal/storage/storagetest"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mini.Addr(),
	})
	s := NewWithClient(client, DefaultConfig())
	t.Cleanup(func() { _ = s.Close() })
	return s, mini
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		Open: func() storage.Storage {
			s, _ := newTestStorage(t)
			return s
		},
	})
}

func TestSessionExpiresWithTTL(t *testing.T) {
	s, mini := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, &model.Session{Token: "tok"}, 24*time.Hour))
	assert.Equal(t, 24*time.Hour, mini.TTL("roster:session:tok"))

	mini.FastForward(25 * time.Hour)

	_, err := s.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestKeyLayout(t *testing.T) {
	s, mini := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, &model.Account{ID: "acc-1", Username: "coachA", Role: model.RoleCoach}))
	require.NoError(t, s.SavePlayer(ctx, &model.Player{ID: "p-1", Name: "Ana"}))

	assert.True(t, mini.Exists("roster:account:acc-1"))
	owner, err := mini.Get("roster:idx:username:coachA")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", owner)
	assert.True(t, mini.Exists("roster:player:p-1"))

	members, err := mini.Members("roster:idx:players")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1"}, members)
}

func TestCustomKeyPrefix(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	cfg := DefaultConfig()
	cfg.KeyPrefix = "club2"
	s := NewWithClient(client, cfg)

	require.NoError(t, s.SavePlayer(context.Background(), &model.Player{ID: "p-1", Name: "Ana"}))
	assert.True(t, mini.Exists("club2:player:p-1"))
}
