package model

import (
	"fmt"
	"strings"
	"time"
)

// PlayerID uniquely identifies a roster entry
type PlayerID string

// NCCRefNotProvided is the sentinel entered when a player has no reference yet.
const NCCRefNotProvided = "N/A"

// Stats holds a player's competition record
type Stats struct {
	Competitions []string `json:"competitions"`
	Medals       int      `json:"medals"`
}

// Player is a club member on the roster
type Player struct {
	ID                PlayerID   `json:"id"`
	NCCRef            string     `json:"nccRef"`
	Name              string     `json:"name"`
	BeltRank          string     `json:"beltRank"`
	Team              Team       `json:"team"`
	Gender            string     `json:"gender,omitempty"`
	Birthdate         *time.Time `json:"birthdate,omitempty"`
	Address           string     `json:"address,omitempty"`
	ContactNumber     string     `json:"contactNumber,omitempty"`
	Email             string     `json:"email,omitempty"`
	EmergencyContact  string     `json:"emergencyContact,omitempty"`
	EmergencyNumber   string     `json:"emergencyNumber,omitempty"`
	NextBelt          string     `json:"nextBelt,omitempty"`
	LastPromotionExam *time.Time `json:"lastPromotionExam,omitempty"`
	PhotoURL          string     `json:"photoUrl,omitempty"`
	RequiredForms     string     `json:"requiredForms,omitempty"` // newline-delimited
	Achievements      []string   `json:"achievements"`
	Stats             Stats      `json:"stats"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Clone returns a deep copy so stored records are never aliased by callers
func (p *Player) Clone() *Player {
	c := *p
	if p.Birthdate != nil {
		b := *p.Birthdate
		c.Birthdate = &b
	}
	if p.LastPromotionExam != nil {
		l := *p.LastPromotionExam
		c.LastPromotionExam = &l
	}
	c.Achievements = append([]string(nil), p.Achievements...)
	c.Stats.Competitions = append([]string(nil), p.Stats.Competitions...)
	return &c
}

// RequiredFormsList splits RequiredForms into its non-empty lines
func (p *Player) RequiredFormsList() []string {
	var forms []string
	for _, line := range strings.Split(p.RequiredForms, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			forms = append(forms, line)
		}
	}
	return forms
}

// PlayerQuery selects roster entries. Zero-valued fields do not constrain.
type PlayerQuery struct {
	Team   Team   // compared with SameTeam
	NCCRef string // exact match
	Name   string // exact match
}

// Matches reports whether p satisfies every set field of q
func (q PlayerQuery) Matches(p *Player) bool {
	if q.Team != NoTeam && !SameTeam(q.Team, p.Team) {
		return false
	}
	if q.NCCRef != "" && p.NCCRef != q.NCCRef {
		return false
	}
	if q.Name != "" && p.Name != q.Name {
		return false
	}
	return true
}

// IsNCCRefSentinel reports whether ref is the "not provided" marker
func IsNCCRefSentinel(ref string) bool {
	return strings.EqualFold(strings.TrimSpace(ref), NCCRefNotProvided)
}

// SurrogateNCCRef derives a reference from the last three letters of the
// surname and a six digit seed, e.g. "Juan Dela Cruz", 42 -> "RUZ000042".
func SurrogateNCCRef(name string, seed int) string {
	parts := strings.Fields(name)
	suffix := "PLR"
	if len(parts) > 0 {
		surname := []rune(parts[len(parts)-1])
		if len(surname) > 3 {
			surname = surname[len(surname)-3:]
		}
		suffix = strings.ToUpper(string(surname))
	}
	return fmt.Sprintf("%s%06d", suffix, seed%1000000)
}
