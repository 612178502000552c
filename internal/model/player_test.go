package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSurrogateNCCRef(t *testing.T) {
	tests := []struct {
		name string
		seed int
		want string
	}{
		{"Juan Dela Cruz", 42, "RUZ000042"},
		{"maria santos", 123456, "TOS123456"},
		{"Li", 7, "LI000007"},
		{"  Ana   Reyes  ", 1999999, "YES999999"},
		{"", 1, "PLR000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SurrogateNCCRef(tt.name, tt.seed))
		})
	}
}

func TestIsNCCRefSentinel(t *testing.T) {
	assert.True(t, IsNCCRefSentinel("N/A"))
	assert.True(t, IsNCCRefSentinel(" n/a "))
	assert.False(t, IsNCCRefSentinel(""))
	assert.False(t, IsNCCRefSentinel("NCC-001"))
}

func TestPlayerQueryMatches(t *testing.T) {
	p := &Player{Name: "Ana Reyes", NCCRef: "NCC-1", Team: "recto "}

	assert.True(t, PlayerQuery{}.Matches(p))
	assert.True(t, PlayerQuery{Team: TeamRECTO}.Matches(p))
	assert.False(t, PlayerQuery{Team: TeamTONDO}.Matches(p))
	assert.True(t, PlayerQuery{NCCRef: "NCC-1"}.Matches(p))
	assert.False(t, PlayerQuery{NCCRef: "NCC-2"}.Matches(p))
	assert.False(t, PlayerQuery{Name: "Ana"}.Matches(p))
}

func TestPlayerCloneDoesNotAlias(t *testing.T) {
	bd := time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC)
	p := &Player{Birthdate: &bd, Achievements: []string{"gold"}, Stats: Stats{Competitions: []string{"open"}}}

	c := p.Clone()
	c.Achievements[0] = "silver"
	c.Stats.Competitions[0] = "regional"
	*c.Birthdate = bd.AddDate(1, 0, 0)

	assert.Equal(t, "gold", p.Achievements[0])
	assert.Equal(t, "open", p.Stats.Competitions[0])
	assert.Equal(t, 2010, p.Birthdate.Year())
}

func TestRequiredFormsList(t *testing.T) {
	p := &Player{RequiredForms: "Waiver\n\n  Medical \nID"}
	assert.Equal(t, []string{"Waiver", "Medical", "ID"}, p.RequiredFormsList())
}

func TestAccountApplyRole(t *testing.T) {
	a := &Account{Username: "coachA", Name: "Coach A", Email: "a@example.com", Team: TeamRECTO, Role: RoleCoach}

	a.ApplyRole(RoleAdmin)
	assert.Equal(t, RoleAdmin, a.Role)
	assert.Empty(t, a.Name)
	assert.Empty(t, a.Email)
	assert.Equal(t, NoTeam, a.Team)
	assert.Equal(t, "coachA", a.DisplayName())

	a.ApplyRole(RoleCoach)
	assert.Equal(t, "coachA", a.Name)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2010, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2010-03-04", "2010-03-04T08:30:00Z", "03/04/2010", "3/4/2010", "March 4, 2010", " 2010/03/04 "} {
		got, err := ParseDate(in)
		if assert.NoError(t, err, in) {
			assert.True(t, want.Equal(got), in)
		}
	}

	_, err := ParseDate("not a date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
