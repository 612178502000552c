package model

import "time"

// EventKind names a broadcast change notification
type EventKind string

const (
	EventPlayerCreated  EventKind = "player:created"
	EventPlayerUpdated  EventKind = "player:updated"
	EventPlayerDeleted  EventKind = "player:deleted"
	EventAccountCreated EventKind = "account:created"
	EventAccountUpdated EventKind = "account:updated"
	EventAccountDeleted EventKind = "account:deleted"
)

// Event is a change notification published after a successful mutation.
// Payload is *Player, Summary, or DeletedRef depending on Kind.
type Event struct {
	Kind      EventKind `json:"kind"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// DeletedRef identifies a removed record
type DeletedRef struct {
	ID string `json:"id"`
}

// IsPlayerEvent reports whether the event concerns the roster
func (k EventKind) IsPlayerEvent() bool {
	return k == EventPlayerCreated || k == EventPlayerUpdated || k == EventPlayerDeleted
}
