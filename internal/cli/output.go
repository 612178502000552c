package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/accounts"
	"github.com/mcoot/arise-roster/internal/services/auth"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []*model.Player:
		o.printPlayers(v)
	case *model.Player:
		o.printPlayer(v)
	case *auth.Profile:
		o.printProfile(v)
	case *response.Login:
		fmt.Fprintf(o.w, "Logged in as %s\n", v.Role)
	case *response.Health:
		fmt.Fprintf(o.w, "Status: %s\nStorage: %s\nViewers: %d\n", v.Status, v.Storage, v.Viewers)
	case *response.Import:
		o.printImport(v)
	case *accounts.ClearResult:
		fmt.Fprintf(o.w, "Removed %d players, %d accounts, %d activity entries, %d sessions\n",
			v.Players, v.Accounts, v.Activity, v.Sessions)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayers(players []*model.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNCC REF\tNAME\tBELT\tTEAM")
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.NCCRef, p.Name, p.BeltRank, orDash(string(p.Team)))
	}
	_ = tw.Flush()
}

func (o *Output) printPlayer(p *model.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "NCC Ref: %s\n", orDash(p.NCCRef))
	fmt.Fprintf(o.w, "Belt: %s\n", p.BeltRank)
	fmt.Fprintf(o.w, "Team: %s\n", orDash(string(p.Team)))
	if p.Birthdate != nil {
		fmt.Fprintf(o.w, "Birthdate: %s\n", p.Birthdate.Format(time.DateOnly))
	}
	if p.ContactNumber != "" {
		fmt.Fprintf(o.w, "Contact: %s\n", p.ContactNumber)
	}
	if p.Email != "" {
		fmt.Fprintf(o.w, "Email: %s\n", p.Email)
	}
	if len(p.Achievements) > 0 {
		fmt.Fprintf(o.w, "Achievements: %s\n", strings.Join(p.Achievements, ", "))
	}
}

func (o *Output) printProfile(p *auth.Profile) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", p.Username, p.Role)
	fmt.Fprintf(o.w, "Name: %s\n", p.Name)
	if p.Email != nil {
		fmt.Fprintf(o.w, "Email: %s\n", *p.Email)
	}
	if p.Team != model.NoTeam {
		fmt.Fprintf(o.w, "Team: %s\n", p.Team)
	}
}

func (o *Output) printImport(r *response.Import) {
	fmt.Fprintf(o.w, "%s: %d imported, %d updated, %d errors\n", r.Message, r.Imported, r.Updated, r.Errors)
	for _, detail := range r.ErrorDetails {
		fmt.Fprintf(o.w, "  - %s\n", detail)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
