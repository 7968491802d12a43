package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"warden/internal/restriction"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

// InMemoryStore keeps restrictions in a map. Used by tests and when no
// database is configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	rules map[id.RestrictionID]*restriction.Restriction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rules: make(map[id.RestrictionID]*restriction.Restriction)}
}

func (s *InMemoryStore) Create(_ context.Context, r *restriction.Restriction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[r.ID]; exists {
		return sentinel.ErrConflict
	}
	s.rules[r.ID] = clone(r)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, restrictionID id.RestrictionID) (*restriction.Restriction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[restrictionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(r), nil
}

func (s *InMemoryStore) ListScope(_ context.Context, t restriction.Type, targetID string) ([]*restriction.Restriction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*restriction.Restriction
	for _, r := range s.rules {
		if r.IsActive && r.Type == t && r.TargetID == targetID {
			out = append(out, clone(r))
		}
	}
	slices.SortFunc(out, func(a, b *restriction.Restriction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, restrictionID id.RestrictionID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[restrictionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !r.IsActive {
		return sentinel.ErrInvalidState
	}
	r.IsActive = false
	return nil
}

func (s *InMemoryStore) DeactivateExpired(_ context.Context, now time.Time) ([]*restriction.Restriction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*restriction.Restriction
	for _, r := range s.rules {
		if r.IsActive && r.ExpiresAt != nil && !now.Before(*r.ExpiresAt) {
			r.IsActive = false
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func clone(r *restriction.Restriction) *restriction.Restriction {
	c := *r
	c.BlockedCountries = slices.Clone(r.BlockedCountries)
	c.AllowedCountries = slices.Clone(r.AllowedCountries)
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
