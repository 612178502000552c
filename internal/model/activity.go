package model

import "time"

// ActivityLogEntry is an append-only audit record. UserName is captured at
// write time and not updated if the account is later renamed.
type ActivityLogEntry struct {
	ID        string    `json:"id"`
	UserID    AccountID `json:"userId"`
	UserRole  Role      `json:"userRole"`
	UserName  string    `json:"userName"`
	Activity  string    `json:"activity"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
