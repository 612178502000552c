package policy

import (
	"testing"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestScopeFor(t *testing.T) {
	assert.False(t, ScopeFor(nil).Restricted())
	assert.False(t, ScopeFor(&model.Session{Role: model.RoleCoach, Team: model.TeamRECTO}).Restricted())

	s := ScopeFor(&model.Session{Role: model.RoleAssistant, Team: model.TeamRECTO})
	assert.True(t, s.Restricted())
	assert.Equal(t, model.TeamRECTO, s.Team())
}

func TestScopeFilterNeverLeaksOtherTeams(t *testing.T) {
	players := []*model.Player{
		{ID: "1", Team: model.TeamRECTO},
		{ID: "2", Team: " recto"},
		{ID: "3", Team: model.TeamTONDO},
		{ID: "4", Team: model.NoTeam},
	}

	got := ScopeForRole(model.RoleAssistant, model.TeamRECTO).Filter(players)
	ids := make([]model.PlayerID, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []model.PlayerID{"1", "2"}, ids)

	assert.Len(t, Unrestricted.Filter(players), 4)
}

func TestScopeWithoutTeamSeesNothing(t *testing.T) {
	s := ScopeForRole(model.RoleAssistant, model.NoTeam)
	assert.False(t, s.Allows(model.NoTeam))
	assert.False(t, s.Allows(model.TeamRECTO))
}

func TestScopeQuery(t *testing.T) {
	q := ScopeForRole(model.RoleAssistant, model.TeamARISE).Query(model.PlayerQuery{NCCRef: "X1"})
	assert.Equal(t, model.TeamARISE, q.Team)
	assert.Equal(t, "X1", q.NCCRef)

	q = Unrestricted.Query(model.PlayerQuery{NCCRef: "X1"})
	assert.Equal(t, model.NoTeam, q.Team)
}
