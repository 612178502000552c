package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arise-roster/internal/api"
	"github.com/mcoot/arise-roster/internal/factory"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/roster"
	"github.com/mcoot/arise-roster/internal/testutil"
)

type cliEnv struct {
	app       *factory.TestApp
	server    *httptest.Server
	tokenFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("ROSTER_TOKEN", "")
	t.Setenv("ROSTER_PASSWORD", "")
	t.Setenv("ROSTER_CONFIG", "")

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		Storage:            app.Storage,
		StorageType:        app.StorageType,
		AuthService:        app.AuthService,
		AccountsService:    app.AccountsService,
		RosterService:      app.RosterService,
		ActivityService:    app.ActivityService,
		SpreadsheetService: app.SpreadsheetService,
		Hub:                app.Hub,
	})
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = app.Close()
	})

	return &cliEnv{
		app:       app,
		server:    server,
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", e.server.URL, "--token-file", e.tokenFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) seedCoach(t *testing.T) {
	t.Helper()
	_, err := e.app.CreateAccount(context.Background(), "coach", model.RoleCoach, model.NoTeam)
	require.NoError(t, err)
}

func (e *cliEnv) seedPlayer(t *testing.T, name, team string) *model.Player {
	t.Helper()
	session, err := e.app.Login(context.Background(), "coach")
	require.NoError(t, err)
	p, err := e.app.RosterService.Create(context.Background(), session, roster.PlayerInput{
		Name:     roster.StringPtr(name),
		BeltRank: roster.StringPtr("White"),
		Team:     roster.StringPtr(team),
	})
	require.NoError(t, err)
	return p
}

func TestLoginSavesToken(t *testing.T) {
	env := newCLIEnv(t)
	env.seedCoach(t)

	out, err := env.run(t, "login", "--user", "coach", "--pass", factory.TestPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as coach")

	token, err := os.ReadFile(env.tokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	out, err = env.run(t, "me")
	require.NoError(t, err)
	assert.Contains(t, out, "User: coach (coach)")

	_, err = env.run(t, "logout")
	require.NoError(t, err)
	_, err = os.Stat(env.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestLoginFailureReportsAPIError(t *testing.T) {
	env := newCLIEnv(t)
	env.seedCoach(t)

	_, err := env.run(t, "login", "--user", "coach", "--pass", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, 401, apiErr.Status)
}

func TestPlayersListAndGet(t *testing.T) {
	env := newCLIEnv(t)
	env.seedCoach(t)
	ana := env.seedPlayer(t, "Ana Cruz", "RECTO")
	env.seedPlayer(t, "Ben Reyes", "")

	out, err := env.run(t, "players", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Cruz")
	assert.Contains(t, out, "Ben Reyes")
	assert.Contains(t, out, "RECTO")

	out, err = env.run(t, "-o", "json", "players", "get", string(ana.ID))
	require.NoError(t, err)
	var got model.Player
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ana.ID, got.ID)
}

func TestPlayersDeleteNeedsLogin(t *testing.T) {
	env := newCLIEnv(t)
	env.seedCoach(t)
	ana := env.seedPlayer(t, "Ana Cruz", "")

	_, err := env.run(t, "players", "delete", string(ana.ID))
	require.Error(t, err)

	_, err = env.run(t, "login", "--user", "coach", "--pass", factory.TestPassword)
	require.NoError(t, err)
	out, err := env.run(t, "players", "delete", string(ana.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Player deleted")
}

func TestRosterExportImport(t *testing.T) {
	env := newCLIEnv(t)
	env.seedCoach(t)
	env.seedPlayer(t, "Ana Cruz", "RECTO")

	_, err := env.run(t, "login", "--user", "coach", "--pass", factory.TestPassword)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	out, err := env.run(t, "roster", "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	out, err = env.run(t, "roster", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 imported, 1 updated, 0 errors")
}

func TestHealth(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: ok")
	assert.Contains(t, out, "Storage: memory")
}

func TestClearDataRequiresConfirmation(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "clear-data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestMaintenanceRefusesMemoryStore(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("ROSTER_STORAGE_TYPE", "memory")

	_, err := env.run(t, "admin", "normalize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent store")
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		"event: connected",
		`data: {"status":"connected"}`,
		"",
		": keepalive",
		"",
		"event: player:created",
		`data: {"id":"p1",`,
		`data: "name":"Ana"}`,
		"",
		"",
	}, "\n")

	var events, payloads []string
	err := readEvents(strings.NewReader(stream), func(event, data string) error {
		events = append(events, event)
		payloads = append(payloads, data)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"connected", "player:created"}, events)
	require.Len(t, payloads, 2)
	assert.Equal(t, "{\"id\":\"p1\",\n\"name\":\"Ana\"}", payloads[1])
}

func TestReadEventsDropsUnterminatedEvent(t *testing.T) {
	stream := "event: connected\ndata: {}\n\nevent: player:deleted\ndata: {\"id\":\"p1\"}\n"

	var events []string
	err := readEvents(strings.NewReader(stream), func(event, _ string) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"connected"}, events)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Ana [RECTO]", describe(`{"id":"p1","name":"Ana","team":"RECTO"}`))
	assert.Equal(t, "sam", describe(`{"id":"a1","username":"sam"}`))
	assert.Equal(t, "p1", describe(`{"id":"p1"}`))
	assert.Equal(t, "", describe(`not json`))
}
