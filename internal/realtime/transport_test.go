package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/testutil"
)

// readSSEEvent reads lines up to the next blank line and returns the event
// name and joined data
func readSSEEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name string
	var data []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if name != "" {
				return name, strings.Join(data, "\n")
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestServeSSE(t *testing.T) {
	hub := startHub(t)
	viewer := ViewerFor(&model.Session{Role: model.RoleAssistant, Team: model.TeamRECTO})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, viewer)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, data := readSSEEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.JSONEq(t, `{"status":"connected"}`, data)

	hub.Publish(model.Event{Kind: model.EventPlayerCreated, Payload: &model.Player{ID: "p-1", Team: model.TeamTONDO}})
	hub.Publish(model.Event{Kind: model.EventPlayerUpdated, Payload: &model.Player{ID: "p-1", Name: "Ana", Team: model.TeamRECTO}})

	name, data = readSSEEvent(t, reader)
	assert.Equal(t, "player:updated", name)
	assert.Contains(t, data, `"name":"Ana"`)

	cancel()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServeWS(t *testing.T) {
	hub := startHub(t)
	upgrader := NewUpgrader(nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, upgrader, hub, ViewerFor(nil), testutil.NopLogger())
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(model.Event{Kind: model.EventPlayerDeleted, Payload: model.DeletedRef{ID: "p-9"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "player:deleted", msg.Event)
	assert.JSONEq(t, `{"id":"p-9"}`, string(msg.Data))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestUpgraderOrigins(t *testing.T) {
	upgrader := NewUpgrader([]string{"http://roster.example"})

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set("Origin", "http://roster.example")
	assert.True(t, upgrader.CheckOrigin(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set("Origin", "http://evil.example")
	assert.False(t, upgrader.CheckOrigin(denied))
}
