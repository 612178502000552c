package roster

import (
	"strings"
	"time"

	"github.com/mcoot/arise-roster/internal/model"
)

// PlayerInput carries the fields of a create or update request. Nil fields
// are left unchanged on update; dates accept any format model.ParseDate
// understands and an empty string clears them.
type PlayerInput struct {
	NCCRef            *string      `json:"nccRef"`
	Name              *string      `json:"name"`
	BeltRank          *string      `json:"beltRank"`
	Team              *string      `json:"team"`
	Gender            *string      `json:"gender"`
	Birthdate         *string      `json:"birthdate"`
	Address           *string      `json:"address"`
	ContactNumber     *string      `json:"contactNumber"`
	Email             *string      `json:"email"`
	EmergencyContact  *string      `json:"emergencyContact"`
	EmergencyNumber   *string      `json:"emergencyNumber"`
	NextBelt          *string      `json:"nextBelt"`
	LastPromotionExam *string      `json:"lastPromotionExam"`
	PhotoURL          *string      `json:"photoUrl"`
	RequiredForms     *string      `json:"requiredForms"`
	Achievements      *[]string    `json:"achievements"`
	Stats             *model.Stats `json:"stats"`
}

// validate checks field formats; create additionally requires name and
// belt rank to be present
func (in *PlayerInput) validate(create bool) error {
	if create {
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return model.NewValidationError("name", "is required")
		}
		if in.BeltRank == nil || strings.TrimSpace(*in.BeltRank) == "" {
			return model.NewValidationError("beltRank", "is required")
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.NewValidationError("name", "cannot be empty")
	}
	if in.BeltRank != nil && strings.TrimSpace(*in.BeltRank) == "" {
		return model.NewValidationError("beltRank", "cannot be empty")
	}
	if in.Stats != nil && in.Stats.Medals < 0 {
		return model.NewValidationError("stats.medals", "cannot be negative")
	}
	if _, err := parseOptionalDate("birthdate", in.Birthdate); err != nil {
		return err
	}
	if _, err := parseOptionalDate("lastPromotionExam", in.LastPromotionExam); err != nil {
		return err
	}
	return nil
}

// apply copies every provided field except Team and NCCRef onto p, which
// the service resolves separately
func (in *PlayerInput) apply(p *model.Player) {
	setTrimmed(&p.Name, in.Name)
	setTrimmed(&p.BeltRank, in.BeltRank)
	setTrimmed(&p.Gender, in.Gender)
	setTrimmed(&p.Address, in.Address)
	setTrimmed(&p.ContactNumber, in.ContactNumber)
	setTrimmed(&p.Email, in.Email)
	setTrimmed(&p.EmergencyContact, in.EmergencyContact)
	setTrimmed(&p.EmergencyNumber, in.EmergencyNumber)
	setTrimmed(&p.NextBelt, in.NextBelt)
	setTrimmed(&p.PhotoURL, in.PhotoURL)
	if in.RequiredForms != nil {
		p.RequiredForms = *in.RequiredForms
	}
	if in.Birthdate != nil {
		p.Birthdate, _ = parseOptionalDate("birthdate", in.Birthdate)
	}
	if in.LastPromotionExam != nil {
		p.LastPromotionExam, _ = parseOptionalDate("lastPromotionExam", in.LastPromotionExam)
	}
	if in.Achievements != nil {
		p.Achievements = append([]string(nil), (*in.Achievements)...)
	}
	if in.Stats != nil {
		p.Stats = model.Stats{
			Competitions: append([]string(nil), in.Stats.Competitions...),
			Medals:       in.Stats.Medals,
		}
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := model.ParseDate(*s)
	if err != nil {
		return nil, model.NewValidationError(field, "must be a date such as 2010-03-04")
	}
	return &t, nil
}

// StringPtr returns a pointer to s, for building inputs
func StringPtr(s string) *string {
	return &s
}
