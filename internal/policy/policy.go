// Package policy decides which roster and account operations a role may
// perform. Every function here is pure: callers pass the acting role and
// team explicitly, and storage lookups happen before the decision is made.
package policy

import (
	"fmt"

	"github.com/mcoot/arise-roster/internal/model"
)

// Operation is an action subject to authorization
type Operation string

const (
	OpRosterRead     Operation = "roster:read"
	OpRosterCreate   Operation = "roster:create"
	OpRosterUpdate   Operation = "roster:update"
	OpRosterDelete   Operation = "roster:delete"
	OpRosterExport   Operation = "roster:export"
	OpRosterImport   Operation = "roster:import"
	OpAccountsManage Operation = "accounts:manage"
	OpActivityRead   Operation = "activity:read"
	OpActivityWrite  Operation = "activity:write"
)

// Anonymous is the role of a caller without a session
const Anonymous model.Role = ""

// Effect is the outcome of a decision
type Effect int

const (
	Deny Effect = iota
	Allow
	AllowFiltered
)

// Decision is the result of evaluating an operation.
// For AllowFiltered, Team is the only team the caller may see.
// For an allowed create, Team is the team the new record must carry.
// For Deny, Err carries the reason.
type Decision struct {
	Effect Effect
	Team   model.Team
	Err    error
}

// Allowed reports whether the operation may proceed
func (d Decision) Allowed() bool {
	return d.Effect != Deny
}

func allow() Decision { return Decision{Effect: Allow} }

func deny(err error) Decision { return Decision{Effect: Deny, Err: err} }

// Decide evaluates op for a caller with the given role and team. target is
// the team the operation touches: the requested team for a create, the
// record's current team for update and delete, and nil where no record is
// involved.
func Decide(role model.Role, team model.Team, op Operation, target *model.Team) Decision {
	if role == Anonymous {
		if op == OpRosterRead {
			return allow()
		}
		return deny(model.ErrAuthenticationRequired)
	}

	switch op {
	case OpAccountsManage:
		if role == model.RoleAdmin {
			return allow()
		}
		return deny(model.NewForbiddenError("only administrators can manage accounts"))
	case OpActivityRead, OpActivityWrite:
		return allow()
	}

	if role != model.RoleAssistant {
		// admin and coach act on every team
		d := allow()
		if op == OpRosterCreate && target != nil {
			d.Team = *target
		}
		return d
	}

	return decideAssistant(team, op, target)
}

func decideAssistant(team model.Team, op Operation, target *model.Team) Decision {
	switch op {
	case OpRosterRead, OpRosterExport:
		return Decision{Effect: AllowFiltered, Team: team}
	case OpRosterImport:
		// rows are checked individually with create/update
		return allow()
	case OpRosterCreate:
		if team == model.NoTeam {
			return deny(model.NewForbiddenError("assistant coach has no team assigned"))
		}
		if target == nil || target.Normalized() == model.NoTeam {
			return Decision{Effect: Allow, Team: team}
		}
		if !model.SameTeam(*target, team) {
			return deny(model.NewForbiddenError("assistant coaches can only add players to team %s", team))
		}
		return Decision{Effect: Allow, Team: team}
	case OpRosterUpdate, OpRosterDelete:
		if target == nil || !model.SameTeam(*target, team) {
			verb := "update"
			if op == OpRosterDelete {
				verb = "delete"
			}
			return deny(model.NewForbiddenError("assistant coaches can only %s players from team %s", verb, team))
		}
		return allow()
	}
	return deny(model.NewForbiddenError("operation %s not permitted", op))
}

// DestinationTeam validates the team requested by an update. Any role may
// move a record it is allowed to update to another valid team; only admin
// and coach may clear the team.
func DestinationTeam(role model.Role, requested string) (model.Team, error) {
	t, err := model.ParseTeam(requested)
	if err != nil {
		return model.NoTeam, err
	}
	if t == model.NoTeam && role == model.RoleAssistant {
		return model.NoTeam, model.NewValidationError("team", fmt.Sprintf("team is required and must be one of %v", model.Teams))
	}
	return t, nil
}
