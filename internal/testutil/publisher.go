package testutil

import (
	"sync"

	"github.com/mcoot/arise-roster/internal/model"
)

// RecordingPublisher collects published events for assertions
type RecordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

// Publish records the event
func (p *RecordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Event(nil), p.events...)
}

// Kinds returns the kinds of the recorded events in order
func (p *RecordingPublisher) Kinds() []model.EventKind {
	events := p.Events()
	kinds := make([]model.EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Last returns the most recent event; it panics if none were published
func (p *RecordingPublisher) Last() model.Event {
	events := p.Events()
	return events[len(events)-1]
}
