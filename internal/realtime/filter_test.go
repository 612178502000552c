package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
)

func TestFilterEvent(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	earist := &model.Player{ID: "p-1", Name: "Ana", Team: model.TeamEARIST}
	tondo := &model.Player{ID: "p-2", Name: "Ben", Team: model.TeamTONDO}

	admin := ViewerFor(&model.Session{Role: model.RoleAdmin})
	coach := ViewerFor(&model.Session{Role: model.RoleCoach})
	assistant := ViewerFor(&model.Session{Role: model.RoleAssistant, Team: "earist"})
	anonymous := ViewerFor(nil)

	accountEvent := model.Event{Kind: model.EventAccountCreated, Payload: model.Summary{Username: "coachA"}, Timestamp: now}

	tests := []struct {
		name      string
		viewer    Viewer
		event     model.Event
		delivered bool
		wantKind  model.EventKind
	}{
		{"coach sees other team created", coach, model.Event{Kind: model.EventPlayerCreated, Payload: tondo}, true, model.EventPlayerCreated},
		{"anonymous sees player updates", anonymous, model.Event{Kind: model.EventPlayerUpdated, Payload: tondo}, true, model.EventPlayerUpdated},
		{"assistant sees own team created", assistant, model.Event{Kind: model.EventPlayerCreated, Payload: earist}, true, model.EventPlayerCreated},
		{"assistant drops other team created", assistant, model.Event{Kind: model.EventPlayerCreated, Payload: tondo}, false, ""},
		{"assistant sees own team updated", assistant, model.Event{Kind: model.EventPlayerUpdated, Payload: earist}, true, model.EventPlayerUpdated},
		{"assistant gets removal for update out of team", assistant, model.Event{Kind: model.EventPlayerUpdated, Payload: tondo, Timestamp: now}, true, model.EventPlayerDeleted},
		{"assistant sees deletions", assistant, model.Event{Kind: model.EventPlayerDeleted, Payload: model.DeletedRef{ID: "p-2"}}, true, model.EventPlayerDeleted},
		{"admin sees account events", admin, accountEvent, true, model.EventAccountCreated},
		{"coach does not see account events", coach, accountEvent, false, ""},
		{"assistant does not see account events", assistant, accountEvent, false, ""},
		{"anonymous does not see account events", anonymous, accountEvent, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FilterEvent(tt.viewer, tt.event)
			assert.Equal(t, tt.delivered, ok)
			if tt.delivered {
				assert.Equal(t, tt.wantKind, got.Kind)
			}
		})
	}
}

func TestFilterEventConvertsToDeletedRef(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	viewer := ViewerFor(&model.Session{Role: model.RoleAssistant, Team: model.TeamRECTO})
	moved := &model.Player{ID: "p-1", Team: model.TeamTONDO}

	got, ok := FilterEvent(viewer, model.Event{Kind: model.EventPlayerUpdated, Payload: moved, Timestamp: now})

	assert.True(t, ok)
	assert.Equal(t, model.Event{Kind: model.EventPlayerDeleted, Payload: model.DeletedRef{ID: "p-1"}, Timestamp: now}, got)
}

func TestViewerFor(t *testing.T) {
	assert.Equal(t, policy.Unrestricted, ViewerFor(nil).Scope)
	assert.True(t, ViewerFor(&model.Session{Role: model.RoleAssistant, Team: model.TeamARISE}).Scope.Restricted())
}
