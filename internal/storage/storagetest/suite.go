// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/storage"
	"github.com/stretchr/testify/suite"
)

// Suite runs the common storage tests against the backend returned by Open.
// Open is called before every test and must return an empty store.
type Suite struct {
	suite.Suite
	Open func() storage.Storage

	store storage.Storage
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.store = s.Open()
	s.ctx = context.Background()
}

var created = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) account(id model.AccountID, username string, role model.Role) *model.Account {
	return &model.Account{
		ID:           id,
		Username:     username,
		PasswordHash: "hash-" + username,
		Role:         role,
		Status:       model.StatusActive,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func (s *Suite) player(id model.PlayerID, name string, team model.Team) *model.Player {
	return &model.Player{
		ID:           id,
		NCCRef:       "NCC-" + string(id),
		Name:         name,
		BeltRank:     "Yellow",
		Team:         team,
		Achievements: []string{"Regional gold"},
		Stats:        model.Stats{Competitions: []string{"Open 2023"}, Medals: 2},
		CreatedAt:    created,
	}
}

// Account tests

func (s *Suite) TestSaveAndGetAccount() {
	a := s.account("acc-1", "coachA", model.RoleCoach)
	a.Name = "Coach A"
	a.Team = model.TeamRECTO
	s.Require().NoError(s.store.SaveAccount(s.ctx, a))

	got, err := s.store.GetAccount(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("coachA", got.Username)
	s.Equal("hash-coachA", got.PasswordHash)
	s.Equal(model.RoleCoach, got.Role)
	s.Equal(model.TeamRECTO, got.Team)
	s.True(got.CreatedAt.Equal(created))

	byName, err := s.store.GetAccountByUsername(s.ctx, "coachA")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), byName.ID)
}

func (s *Suite) TestTouchLastLoginOnlySetsLastLogin() {
	a := s.account("acc-1", "coachA", model.RoleCoach)
	s.Require().NoError(s.store.SaveAccount(s.ctx, a))

	// an edit the caller never saw
	edited := s.account("acc-1", "coachA", model.RoleCoach)
	edited.Status = model.StatusDisabled
	s.Require().NoError(s.store.SaveAccount(s.ctx, edited))

	at := created.Add(time.Hour)
	s.Require().NoError(s.store.TouchLastLogin(s.ctx, "acc-1", at))

	got, err := s.store.GetAccount(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(model.StatusDisabled, got.Status)
	s.Require().NotNil(got.LastLogin)
	s.True(got.LastLogin.Equal(at))

	s.ErrorIs(s.store.TouchLastLogin(s.ctx, "missing", at), model.ErrAccountNotFound)
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.store.GetAccount(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.store.GetAccountByUsername(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestUsernameUniqueAcrossRoles() {
	s.Require().NoError(s.store.SaveAccount(s.ctx, s.account("acc-1", "sam", model.RoleAdmin)))

	err := s.store.SaveAccount(s.ctx, s.account("acc-2", "sam", model.RoleAssistant))
	s.ErrorIs(err, model.ErrUsernameExists)

	// re-saving the owner is fine
	s.NoError(s.store.SaveAccount(s.ctx, s.account("acc-1", "sam", model.RoleCoach)))
}

func (s *Suite) TestRenameReleasesUsername() {
	s.Require().NoError(s.store.SaveAccount(s.ctx, s.account("acc-1", "old", model.RoleCoach)))
	s.Require().NoError(s.store.SaveAccount(s.ctx, s.account("acc-1", "new", model.RoleCoach)))

	_, err := s.store.GetAccountByUsername(s.ctx, "old")
	s.ErrorIs(err, model.ErrAccountNotFound)

	s.NoError(s.store.SaveAccount(s.ctx, s.account("acc-2", "old", model.RoleCoach)))
}

func (s *Suite) TestListAndDeleteAccounts() {
	s.Require().NoError(s.store.SaveAccount(s.ctx, s.account("acc-1", "zed", model.RoleAssistant)))
	s.Require().NoError(s.store.SaveAccount(s.ctx, s.account("acc-2", "amy", model.RoleCoach)))
	s.Require().NoError(s.store.SaveAccount(s.ctx, s.account("acc-3", "root", model.RoleAdmin)))

	accounts, err := s.store.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 3)
	s.Equal("root", accounts[0].Username)
	s.Equal("amy", accounts[1].Username)
	s.Equal("zed", accounts[2].Username)

	s.Require().NoError(s.store.DeleteAccount(s.ctx, "acc-2"))
	_, err = s.store.GetAccountByUsername(s.ctx, "amy")
	s.ErrorIs(err, model.ErrAccountNotFound)

	accounts, err = s.store.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	p := s.player("p-1", "Ana Reyes", model.TeamRECTO)
	bd := time.Date(2010, 3, 4, 0, 0, 0, 0, time.UTC)
	p.Birthdate = &bd
	p.RequiredForms = "Waiver\nMedical"
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	got, err := s.store.GetPlayer(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal("Ana Reyes", got.Name)
	s.Equal(model.TeamRECTO, got.Team)
	s.Require().NotNil(got.Birthdate)
	s.True(got.Birthdate.Equal(bd))
	s.Equal([]string{"Regional gold"}, got.Achievements)
	s.Equal(2, got.Stats.Medals)
	s.Equal("Waiver\nMedical", got.RequiredForms)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.store.GetPlayer(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerReplaces() {
	p := s.player("p-1", "Ana Reyes", model.TeamRECTO)
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	p.BeltRank = "Green"
	p.Team = model.TeamTONDO
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	got, err := s.store.GetPlayer(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal("Green", got.BeltRank)
	s.Equal(model.TeamTONDO, got.Team)
}

func (s *Suite) TestFindPlayers() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, s.player("p-1", "Cruz", model.TeamRECTO)))
	s.Require().NoError(s.store.SavePlayer(s.ctx, s.player("p-2", "Abad", "recto")))
	s.Require().NoError(s.store.SavePlayer(s.ctx, s.player("p-3", "Bato", model.TeamTONDO)))

	all, err := s.store.FindPlayers(s.ctx, model.PlayerQuery{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{"Abad", "Bato", "Cruz"}, []string{all[0].Name, all[1].Name, all[2].Name})

	recto, err := s.store.FindPlayers(s.ctx, model.PlayerQuery{Team: model.TeamRECTO})
	s.Require().NoError(err)
	s.Len(recto, 2)

	byRef, err := s.store.FindPlayers(s.ctx, model.PlayerQuery{NCCRef: "NCC-p-3"})
	s.Require().NoError(err)
	s.Require().Len(byRef, 1)
	s.Equal("Bato", byRef[0].Name)

	byName, err := s.store.FindPlayers(s.ctx, model.PlayerQuery{Name: "Cruz"})
	s.Require().NoError(err)
	s.Len(byName, 1)

	none, err := s.store.FindPlayers(s.ctx, model.PlayerQuery{NCCRef: "nope"})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestDeletePlayer() {
	s.Require().NoError(s.store.SavePlayer(s.ctx, s.player("p-1", "Ana", model.TeamRECTO)))
	s.Require().NoError(s.store.DeletePlayer(s.ctx, "p-1"))

	_, err := s.store.GetPlayer(s.ctx, "p-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	all, err := s.store.FindPlayers(s.ctx, model.PlayerQuery{})
	s.Require().NoError(err)
	s.Empty(all)
}

// Activity log tests

func (s *Suite) TestRecentActivityNewestFirst() {
	for i, act := range []string{"first", "second", "third"} {
		err := s.store.AppendActivity(s.ctx, &model.ActivityLogEntry{
			ID:        act,
			UserID:    "acc-1",
			UserRole:  model.RoleCoach,
			UserName:  "Coach A",
			Activity:  act,
			Timestamp: created.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	recent, err := s.store.RecentActivity(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("third", recent[0].Activity)
	s.Equal("second", recent[1].Activity)
	s.Equal("Coach A", recent[0].UserName)

	n, err := s.store.ClearActivity(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	recent, err = s.store.RecentActivity(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(recent)
}

// Session tests

func (s *Suite) TestSessionLifecycle() {
	sess := &model.Session{
		Token:     "tok-1",
		UserID:    "acc-1",
		Username:  "asst",
		Role:      model.RoleAssistant,
		Team:      model.TeamRECTO,
		Status:    model.StatusActive,
		CreatedAt: created,
	}
	s.Require().NoError(s.store.SaveSession(s.ctx, sess, time.Hour))

	got, err := s.store.GetSession(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal(model.RoleAssistant, got.Role)
	s.Equal(model.TeamRECTO, got.Team)
	s.True(got.CreatedAt.Equal(created))

	s.Require().NoError(s.store.DeleteSession(s.ctx, "tok-1"))
	_, err = s.store.GetSession(s.ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestClearSessions() {
	s.Require().NoError(s.store.SaveSession(s.ctx, &model.Session{Token: "a", CreatedAt: created}, time.Hour))
	s.Require().NoError(s.store.SaveSession(s.ctx, &model.Session{Token: "b", CreatedAt: created}, time.Hour))

	n, err := s.store.ClearSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	_, err = s.store.GetSession(s.ctx, "a")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
