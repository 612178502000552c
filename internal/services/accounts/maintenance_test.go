package accounts

import (
	"time"

	"github.com/mcoot/arise-roster/internal/model"
)

// ClearData tests

func (s *ServiceSuite) TestClearDataKeepsNamedAdmin() {
	s.create(CreateInput{Username: "admin", Password: "Passw0rd", Role: "admin"})
	s.create(CreateInput{Username: "coach", Password: "Passw0rd", Role: "coach"})
	s.create(CreateInput{Username: "asst", Password: "Passw0rd", Role: "assistant", Team: "RECTO"})
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1", Name: "Ana", BeltRank: "White"}))
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Token: "tok", UserID: "x"}, time.Hour))

	result, err := s.service.ClearData(s.ctx, s.admin, "admin")
	s.Require().NoError(err)
	s.Equal(1, result.Players)
	s.Equal(2, result.Accounts)
	s.Equal(1, result.Sessions)
	s.Positive(result.Activity)

	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal("admin", accounts[0].Username)

	players, err := s.storage.FindPlayers(s.ctx, model.PlayerQuery{})
	s.Require().NoError(err)
	s.Empty(players)

	entries, err := s.storage.RecentActivity(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ServiceSuite) TestClearDataWithoutKeepRemovesAllAccounts() {
	s.create(CreateInput{Username: "admin", Password: "Passw0rd", Role: "admin"})

	result, err := s.service.ClearData(s.ctx, s.admin, "")
	s.Require().NoError(err)
	s.Equal(1, result.Accounts)
}

func (s *ServiceSuite) TestClearDataRequiresAdmin() {
	coach := &model.Session{UserID: "c", Username: "coach", Role: model.RoleCoach}
	_, err := s.service.ClearData(s.ctx, coach, "")
	s.True(model.IsForbidden(err))
}

// Normalize tests

func (s *ServiceSuite) TestNormalizeBackfills() {
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{
		ID: "a1", Username: "legacy-coach", Role: model.RoleCoach,
	}))
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{
		ID: "a2", Username: "legacy-admin", Role: model.RoleAdmin, Name: "Root", Status: model.StatusActive,
	}))
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{
		ID: "a3", Username: "fine", Role: model.RoleCoach, Name: "Fine", Status: model.StatusDisabled,
	}))

	changed, err := s.service.Normalize(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(2, changed)

	coach, err := s.storage.GetAccount(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(model.StatusActive, coach.Status)
	s.Equal("legacy-coach", coach.Name)

	admin, err := s.storage.GetAccount(s.ctx, "a2")
	s.Require().NoError(err)
	s.Empty(admin.Name)

	fine, err := s.storage.GetAccount(s.ctx, "a3")
	s.Require().NoError(err)
	s.Equal(model.StatusDisabled, fine.Status)

	changed, err = s.service.Normalize(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Zero(changed)
}
