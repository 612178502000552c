package memory

import (
	"context"
	"testing"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
	"github.com/mcoot/arise-roster/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		Open: func() storage.Storage { return New() },
	})
}

func TestReturnedPlayersAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SavePlayer(ctx, &model.Player{ID: "p-1", Name: "Ana", Achievements: []string{"gold"}}))

	got, err := s.GetPlayer(ctx, "p-1")
	require.NoError(t, err)
	got.Name = "changed"
	got.Achievements[0] = "changed"

	again, err := s.GetPlayer(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Name)
	assert.Equal(t, "gold", again.Achievements[0])
}
