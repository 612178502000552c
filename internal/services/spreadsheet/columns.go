package spreadsheet

import (
	"strings"
	"time"

	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/roster"
)

// column maps a header label to a player field in both directions
type column struct {
	header string
	width  float64
	read   func(in *roster.PlayerInput, value string)
	write  func(p *model.Player) string
}

var columns = []column{
	{"NCC Reference", 15, func(in *roster.PlayerInput, v string) { in.NCCRef = &v }, func(p *model.Player) string { return p.NCCRef }},
	{"Name", 25, func(in *roster.PlayerInput, v string) { in.Name = &v }, func(p *model.Player) string { return p.Name }},
	{"Gender", 10, func(in *roster.PlayerInput, v string) { in.Gender = &v }, func(p *model.Player) string { return p.Gender }},
	{"Belt Rank", 15, func(in *roster.PlayerInput, v string) { in.BeltRank = &v }, func(p *model.Player) string { return p.BeltRank }},
	{"Birthdate", 12, func(in *roster.PlayerInput, v string) { in.Birthdate = &v }, func(p *model.Player) string { return formatDate(p.Birthdate) }},
	{"Address", 30, func(in *roster.PlayerInput, v string) { in.Address = &v }, func(p *model.Player) string { return p.Address }},
	{"Contact Number", 15, func(in *roster.PlayerInput, v string) { in.ContactNumber = &v }, func(p *model.Player) string { return p.ContactNumber }},
	{"Email", 25, func(in *roster.PlayerInput, v string) { in.Email = &v }, func(p *model.Player) string { return p.Email }},
	{"Emergency Contact", 20, func(in *roster.PlayerInput, v string) { in.EmergencyContact = &v }, func(p *model.Player) string { return p.EmergencyContact }},
	{"Emergency Number", 15, func(in *roster.PlayerInput, v string) { in.EmergencyNumber = &v }, func(p *model.Player) string { return p.EmergencyNumber }},
	{"Required Forms", 20, func(in *roster.PlayerInput, v string) { in.RequiredForms = &v }, func(p *model.Player) string { return p.RequiredForms }},
	{"Team", 10, func(in *roster.PlayerInput, v string) { in.Team = &v }, func(p *model.Player) string { return string(p.Team) }},
}

// createdColumn is export-only
const createdColumn = "Created Date"

// headerIndex maps each recognised header position to its column.
// Matching ignores case and surrounding whitespace; unknown labels are skipped.
func headerIndex(header []string) map[int]column {
	byLabel := make(map[string]column, len(columns))
	for _, c := range columns {
		byLabel[strings.ToLower(c.header)] = c
	}
	index := make(map[int]column)
	for i, label := range header {
		if c, ok := byLabel[strings.ToLower(strings.TrimSpace(label))]; ok {
			index[i] = c
		}
	}
	return index
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
