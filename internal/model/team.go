package model

import (
	"fmt"
	"strings"
)

// Team is one of the fixed club teams. The zero value means unassigned.
type Team string

const (
	TeamEARIST Team = "EARIST"
	TeamERVHS  Team = "ERVHS"
	TeamARISE  Team = "ARISE"
	TeamTONDO  Team = "TONDO"
	TeamRECTO  Team = "RECTO"

	NoTeam Team = ""
)

// Teams lists every valid team in display order.
var Teams = []Team{TeamEARIST, TeamERVHS, TeamARISE, TeamTONDO, TeamRECTO}

// ParseTeam normalises s (trimmed, case-insensitive) to its canonical Team.
// An empty or blank s yields NoTeam with no error.
func ParseTeam(s string) (Team, error) {
	key := normalizeTeam(s)
	if key == "" {
		return NoTeam, nil
	}
	for _, t := range Teams {
		if string(t) == key {
			return t, nil
		}
	}
	return NoTeam, NewValidationError("team", fmt.Sprintf("invalid team %q: must be one of %s", strings.TrimSpace(s), teamList()))
}

// SameTeam reports whether two team values name the same team after
// trimming and case folding. Two unassigned values are not considered equal.
func SameTeam(a, b Team) bool {
	na, nb := normalizeTeam(string(a)), normalizeTeam(string(b))
	return na != "" && na == nb
}

// Normalized returns the trimmed, upper-cased form used for comparisons.
func (t Team) Normalized() Team {
	return Team(normalizeTeam(string(t)))
}

func normalizeTeam(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func teamList() string {
	names := make([]string, len(Teams))
	for i, t := range Teams {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
