package accounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/arise-roster/internal/model"
)

// ClearResult counts what ClearData removed
type ClearResult struct {
	Players  int `json:"players"`
	Accounts int `json:"accounts"`
	Activity int `json:"activity"`
	Sessions int `json:"sessions"`
}

// ClearData removes every player, activity entry and session, and every
// account except the one named keep. Pass an empty keep to remove all
// accounts.
func (s *Service) ClearData(ctx context.Context, session *model.Session, keep string) (*ClearResult, error) {
	if err := authorize(session); err != nil {
		return nil, err
	}
	result := &ClearResult{}

	players, err := s.storage.FindPlayers(ctx, model.PlayerQuery{})
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	for _, p := range players {
		if err := s.storage.DeletePlayer(ctx, p.ID); err != nil {
			return result, fmt.Errorf("deleting player %s: %w", p.ID, err)
		}
		result.Players++
	}

	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return result, fmt.Errorf("listing accounts: %w", err)
	}
	for _, a := range accounts {
		if keep != "" && a.Username == keep {
			continue
		}
		if err := s.storage.DeleteAccount(ctx, a.ID); err != nil {
			return result, fmt.Errorf("deleting account %s: %w", a.Username, err)
		}
		result.Accounts++
	}

	if result.Activity, err = s.storage.ClearActivity(ctx); err != nil {
		return result, fmt.Errorf("clearing activity: %w", err)
	}
	if result.Sessions, err = s.storage.ClearSessions(ctx); err != nil {
		return result, fmt.Errorf("clearing sessions: %w", err)
	}

	s.logger.Info("data cleared",
		slog.Int("players", result.Players),
		slog.Int("accounts", result.Accounts),
		slog.Int("activity", result.Activity),
		slog.Int("sessions", result.Sessions),
		slog.String("kept", keep),
	)
	return result, nil
}

// Normalize backfills records written before status and names were
// tracked: a missing status becomes active, a coach or assistant without
// a name takes the username, and admins lose role-foreign fields. It
// returns the number of accounts changed.
func (s *Service) Normalize(ctx context.Context, session *model.Session) (int, error) {
	if err := authorize(session); err != nil {
		return 0, err
	}
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, a := range accounts {
		before := *a
		if a.Status == "" {
			a.Status = model.StatusActive
		}
		a.ApplyRole(a.Role)
		if before.Status == a.Status && before.Name == a.Name && before.Email == a.Email && before.Team == a.Team {
			continue
		}
		a.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveAccount(ctx, a); err != nil {
			return changed, fmt.Errorf("saving %s: %w", a.Username, err)
		}
		changed++
	}

	if changed > 0 {
		s.logger.Info("accounts normalized", slog.Int("changed", changed))
	}
	return changed, nil
}
