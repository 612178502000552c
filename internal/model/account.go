package model

import "time"

// AccountID uniquely identifies an account of any role
type AccountID string

// Role determines which operations an account may perform
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCoach     Role = "coach"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleAssistant:
		return true
	}
	return false
}

// AccountStatus marks whether an account may sign in
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusDisabled AccountStatus = "disabled"
)

// Account is a staff login. The Role tag selects which of the optional
// fields apply: admins carry no Name, Email or Team; assistants must have a Team.
type Account struct {
	ID           AccountID
	Username     string // unique across all roles
	PasswordHash string
	Role         Role
	Name         string
	Email        string
	Team         Team
	Status       AccountStatus
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the account may sign in
func (a *Account) Active() bool {
	return a.Status != StatusDisabled
}

// DisplayName is the name recorded in activity entries and shown by /auth/me
func (a *Account) DisplayName() string {
	if a.Role == RoleAdmin || a.Name == "" {
		return a.Username
	}
	return a.Name
}

// ApplyRole switches the account to role r in place and clears fields the
// new role does not carry.
func (a *Account) ApplyRole(r Role) {
	a.Role = r
	if r == RoleAdmin {
		a.Name = ""
		a.Email = ""
		a.Team = NoTeam
	} else if a.Name == "" {
		a.Name = a.Username
	}
}

// Summary is the client-facing projection of an account
type Summary struct {
	ID        AccountID     `json:"id"`
	Username  string        `json:"username"`
	Role      Role          `json:"role"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email,omitempty"`
	Team      Team          `json:"team,omitempty"`
	Status    AccountStatus `json:"status"`
	LastLogin *time.Time    `json:"lastLogin,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Summary projects the account without its credentials
func (a *Account) Summary() Summary {
	return Summary{
		ID:        a.ID,
		Username:  a.Username,
		Role:      a.Role,
		Name:      a.Name,
		Email:     a.Email,
		Team:      a.Team,
		Status:    a.Status,
		LastLogin: a.LastLogin,
		CreatedAt: a.CreatedAt,
	}
}
