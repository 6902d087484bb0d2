package store

import (
	"context"
	"sync"

	"onestack/internal/progress"
	id "onestack/pkg/domain"
	"onestack/pkg/platform/sentinel"
)

// InMemoryProfileStore keeps profiles in a mutex-guarded map. Used by unit
// tests and dev mode when no database is configured.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*progress.Profile
}

func NewMemory() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[id.UserID]*progress.Profile)}
}

func (s *InMemoryProfileStore) Get(_ context.Context, userID id.UserID) (*progress.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemoryProfileStore) Save(_ context.Context, profile *progress.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[profile.UserID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != profile.Version {
		return sentinel.ErrConflict
	}

	saved := profile.Clone()
	saved.Version++
	s.profiles[profile.UserID] = saved
	profile.Version = saved.Version
	return nil
}

func (s *InMemoryProfileStore) Create(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[userID]; exists {
		return sentinel.ErrConflict
	}
	s.profiles[userID] = &progress.Profile{UserID: userID, Version: 1}
	return nil
}
