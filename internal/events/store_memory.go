package events

import (
	"context"
	"sync"
)

// InMemoryStore retains the most recent events in a bounded ring. The
// default sink when no broker is configured; useful for dev inspection and
// tests.
type InMemoryStore struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

func NewInMemoryStore(limit int) *InMemoryStore {
	return &InMemoryStore{limit: limit}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// Events returns a snapshot of retained events, oldest first.
func (s *InMemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}
