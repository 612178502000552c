package policy

import "github.com/mcoot/arise-roster/internal/model"

// Scope is the read filter a caller gets from a roster search. The same
// filter is applied to exports and to live change events.
type Scope struct {
	restricted bool
	team       model.Team
}

// Unrestricted is the scope of admins, coaches and anonymous readers
var Unrestricted = Scope{}

// ScopeFor returns the read scope of a session; nil means anonymous.
func ScopeFor(s *model.Session) Scope {
	if s == nil {
		return ScopeForRole(Anonymous, model.NoTeam)
	}
	return ScopeForRole(s.Role, s.Team)
}

// ScopeForRole returns the read scope for a role and team
func ScopeForRole(role model.Role, team model.Team) Scope {
	d := Decide(role, team, OpRosterRead, nil)
	if d.Effect == AllowFiltered {
		return Scope{restricted: true, team: d.Team}
	}
	return Unrestricted
}

// Restricted reports whether the scope filters by team
func (s Scope) Restricted() bool {
	return s.restricted
}

// Team returns the visible team of a restricted scope
func (s Scope) Team() model.Team {
	return s.team
}

// Allows reports whether a record on team t is visible.
// A restricted scope without a team sees nothing.
func (s Scope) Allows(t model.Team) bool {
	if !s.restricted {
		return true
	}
	return model.SameTeam(s.team, t)
}

// Query narrows q to the scope
func (s Scope) Query(q model.PlayerQuery) model.PlayerQuery {
	if s.restricted {
		q.Team = s.team
	}
	return q
}

// Filter returns the players visible in the scope
func (s Scope) Filter(players []*model.Player) []*model.Player {
	if !s.restricted {
		return players
	}
	visible := make([]*model.Player, 0, len(players))
	for _, p := range players {
		if s.Allows(p.Team) {
			visible = append(visible, p)
		}
	}
	return visible
}
