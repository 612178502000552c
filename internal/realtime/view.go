package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
	"github.com/mcoot/arise-roster/internal/storage"
)

// DecodeEvent parses a named event as delivered by either transport
func DecodeEvent(name string, data []byte) (model.Event, error) {
	ev := model.Event{Kind: model.EventKind(name)}
	switch ev.Kind {
	case model.EventPlayerCreated, model.EventPlayerUpdated:
		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return ev, fmt.Errorf("decoding %s: %w", name, err)
		}
		ev.Payload = &p
	case model.EventAccountCreated, model.EventAccountUpdated:
		var a model.Summary
		if err := json.Unmarshal(data, &a); err != nil {
			return ev, fmt.Errorf("decoding %s: %w", name, err)
		}
		ev.Payload = a
	case model.EventPlayerDeleted, model.EventAccountDeleted:
		var ref model.DeletedRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return ev, fmt.Errorf("decoding %s: %w", name, err)
		}
		ev.Payload = ref
	default:
		return ev, fmt.Errorf("unknown event %q", name)
	}
	return ev, nil
}

// View is a viewer's local copy of the roster, seeded from a search and
// kept current by applying events. Reconnecting viewers must reseed it.
type View struct {
	mu      sync.RWMutex
	scope   policy.Scope
	players map[model.PlayerID]*model.Player
}

// NewView creates a view holding the visible subset of initial
func NewView(scope policy.Scope, initial []*model.Player) *View {
	v := &View{scope: scope, players: make(map[model.PlayerID]*model.Player)}
	for _, p := range scope.Filter(initial) {
		v.players[p.ID] = p.Clone()
	}
	return v
}

// Apply updates the view with a player event and reports whether it changed
func (v *View) Apply(ev model.Event) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Kind {
	case model.EventPlayerCreated, model.EventPlayerUpdated:
		p, ok := ev.Payload.(*model.Player)
		if !ok {
			return false
		}
		if !v.scope.Allows(p.Team) {
			return v.remove(p.ID)
		}
		v.players[p.ID] = p.Clone()
		return true
	case model.EventPlayerDeleted:
		ref, ok := ev.Payload.(model.DeletedRef)
		if !ok {
			return false
		}
		return v.remove(model.PlayerID(ref.ID))
	}
	return false
}

func (v *View) remove(id model.PlayerID) bool {
	if _, ok := v.players[id]; !ok {
		return false
	}
	delete(v.players, id)
	return true
}

// Players returns the current view sorted by name
func (v *View) Players() []*model.Player {
	v.mu.RLock()
	defer v.mu.RUnlock()
	players := make([]*model.Player, 0, len(v.players))
	for _, p := range v.players {
		players = append(players, p.Clone())
	}
	storage.SortPlayers(players)
	return players
}

// Len returns the number of players in the view
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.players)
}
