package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
	"github.com/mcoot/arise-roster/internal/realtime"
	"github.com/mcoot/arise-roster/internal/services/auth"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live roster changes",
		Long: `Connect to the live event stream and keep a local copy of the visible
roster in sync.

Events:
  - player:created / player:updated / player:deleted
  - account:created / account:updated / account:deleted (admins only)

An update that moves a player out of your team arrives as player:deleted.
Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func watch(ctx context.Context, w io.Writer, jsonOutput bool) error {
	scope := policy.Unrestricted
	if cfg.Token != "" {
		var profile auth.Profile
		if err := client.Get("/api/auth/me", &profile); err != nil {
			return err
		}
		scope = policy.ScopeForRole(profile.Role, profile.Team)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(cfg.ServerURL, "/")+"/api/events", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var view *realtime.View
	err = readEvents(resp.Body, func(event, data string) error {
		if event == "connected" {
			// Load the snapshot only once the stream is live so no change is missed
			var players []*model.Player
			if err := client.Get("/api/player/search", &players); err != nil {
				return err
			}
			view = realtime.NewView(scope, players)
			if !jsonOutput {
				fmt.Fprintf(w, "Connected, %d players visible\n", view.Len())
			}
			return nil
		}
		if view == nil {
			return nil
		}

		ev, err := realtime.DecodeEvent(event, []byte(data))
		if err != nil {
			return nil
		}
		view.Apply(ev)
		printEvent(w, event, data, view.Len(), jsonOutput)
		return nil
	})

	if ctx.Err() != nil {
		if !jsonOutput {
			fmt.Fprintln(w, "\nDisconnected")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// readEvents parses an SSE stream, calling fn for every complete event.
// Comment lines are ignored.
func readEvents(r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if currentEvent != "" {
				if err := fn(currentEvent, strings.Join(dataLines, "\n")); err != nil {
					return err
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

func printEvent(w io.Writer, event, data string, visible int, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Fprintln(w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "[%s] %s %s (%d visible)\n", timestamp, event, describe(data), visible)
}

func describe(data string) string {
	var fields struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Team     string `json:"team"`
	}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return ""
	}
	switch {
	case fields.Name != "" && fields.Team != "":
		return fmt.Sprintf("%s [%s]", fields.Name, fields.Team)
	case fields.Name != "":
		return fields.Name
	case fields.Username != "":
		return fields.Username
	}
	return fields.ID
}
