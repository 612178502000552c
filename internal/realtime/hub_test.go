package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/testutil"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %s", msg.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func TestHubRegisterAndPublish(t *testing.T) {
	hub := startHub(t)

	client := NewClient(ViewerFor(nil))
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(model.Event{Kind: model.EventPlayerCreated, Payload: &model.Player{ID: "p-1", Name: "Ana"}})

	msg := receive(t, client)
	assert.Equal(t, "player:created", msg.Event)
	var p model.Player
	require.NoError(t, json.Unmarshal(msg.Data, &p))
	assert.Equal(t, "Ana", p.Name)
}

func TestHubFiltersPerViewer(t *testing.T) {
	hub := startHub(t)

	admin := NewClient(ViewerFor(&model.Session{Role: model.RoleAdmin}))
	assistant := NewClient(ViewerFor(&model.Session{Role: model.RoleAssistant, Team: model.TeamRECTO}))
	hub.Register(admin)
	hub.Register(assistant)

	hub.Publish(model.Event{Kind: model.EventPlayerCreated, Payload: &model.Player{ID: "p-1", Team: model.TeamTONDO}})
	hub.Publish(model.Event{Kind: model.EventPlayerUpdated, Payload: &model.Player{ID: "p-2", Team: model.TeamTONDO}})
	hub.Publish(model.Event{Kind: model.EventAccountDeleted, Payload: model.DeletedRef{ID: "acc-1"}})

	assert.Equal(t, "player:created", receive(t, admin).Event)
	assert.Equal(t, "player:updated", receive(t, admin).Event)
	assert.Equal(t, "account:deleted", receive(t, admin).Event)

	removal := receive(t, assistant)
	assert.Equal(t, "player:deleted", removal.Event)
	assert.JSONEq(t, `{"id":"p-2"}`, string(removal.Data))
	assertNothing(t, assistant)
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := startHub(t)

	client := NewClient(ViewerFor(nil))
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubDoesNotReplayEventsPublishedBeforeRegister(t *testing.T) {
	hub := startHub(t)

	for i := 0; i < 50; i++ {
		hub.Publish(model.Event{Kind: model.EventPlayerDeleted, Payload: model.DeletedRef{ID: "p-1"}})

		client := NewClient(ViewerFor(nil))
		hub.Register(client)
		hub.Publish(model.Event{Kind: model.EventPlayerCreated, Payload: &model.Player{ID: "p-2"}})

		assert.Equal(t, "player:created", receive(t, client).Event)
		hub.Unregister(client)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()

	client := NewClient(ViewerFor(nil))
	hub.Register(client)
	hub.Close()

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}

	// registering after close must not block
	late := NewClient(ViewerFor(nil))
	hub.Register(late)
	_, ok := <-late.send
	assert.False(t, ok)
	hub.Unregister(late)
	hub.Close()
}

func TestHubDropsWhenClientBufferFull(t *testing.T) {
	hub := startHub(t)

	slow := NewClient(ViewerFor(nil))
	fast := NewClient(ViewerFor(nil))
	hub.Register(slow)
	hub.Register(fast)

	for i := 0; i < sendBufferSize; i++ {
		slow.send <- Message{Event: "filler"}
	}

	hub.Publish(model.Event{Kind: model.EventPlayerDeleted, Payload: model.DeletedRef{ID: "p-1"}})

	assert.Equal(t, "player:deleted", receive(t, fast).Event)
	assert.Len(t, slow.send, sendBufferSize)
}

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{"single line data", "player:created", `{"id":"p-1"}`, "event: player:created\ndata: {\"id\":\"p-1\"}\n\n"},
		{"multi-line data", "note", "a\nb", "event: note\ndata: a\ndata: b\n\n"},
		{"empty data", "ping", "", "event: ping\ndata: \n\n"},
		{"carriage returns", "test", "line1\r\nline2", "event: test\ndata: line1\ndata: line2\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"hello"}, splitLines("hello"))
	assert.Equal(t, []string{"line1", "line2"}, splitLines("line1\nline2"))
	assert.Equal(t, []string{"line1"}, splitLines("line1\n"))
	assert.Equal(t, []string{""}, splitLines(""))
	assert.Equal(t, []string{"line1", "line2"}, splitLines("line1\r\nline2\r\n"))
}
