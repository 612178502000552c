package realtime

import (
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
)

// Viewer is what a live connection is allowed to see
type Viewer struct {
	Role  model.Role
	Scope policy.Scope
}

// ViewerFor returns the viewer of a session; nil means anonymous
func ViewerFor(session *model.Session) Viewer {
	if session == nil {
		return Viewer{Role: policy.Anonymous, Scope: policy.ScopeFor(nil)}
	}
	return Viewer{Role: session.Role, Scope: policy.ScopeFor(session)}
}

// FilterEvent re-applies the viewer's read scope to an event. A player
// created outside the scope is dropped; one updated out of the scope is
// turned into a deletion so the viewer removes it. Account events reach
// admins only.
func FilterEvent(viewer Viewer, ev model.Event) (model.Event, bool) {
	if !ev.Kind.IsPlayerEvent() {
		return ev, viewer.Role == model.RoleAdmin
	}
	if ev.Kind == model.EventPlayerDeleted || !viewer.Scope.Restricted() {
		return ev, true
	}

	p, ok := ev.Payload.(*model.Player)
	if !ok {
		return ev, false
	}
	if viewer.Scope.Allows(p.Team) {
		return ev, true
	}
	if ev.Kind == model.EventPlayerUpdated {
		return model.Event{
			Kind:      model.EventPlayerDeleted,
			Payload:   model.DeletedRef{ID: string(p.ID)},
			Timestamp: ev.Timestamp,
		}, true
	}
	return ev, false
}
