package model

import "time"

// Session is the authenticated identity attached to requests after login.
// Role, Team and Status are copied from the account at login time.
type Session struct {
	Token     string
	UserID    AccountID
	Username  string
	Name      string
	Role      Role
	Team      Team
	Status    AccountStatus
	CreatedAt time.Time
}

// Expired reports whether the session is older than maxAge at now
func (s *Session) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.CreatedAt) > maxAge
}
