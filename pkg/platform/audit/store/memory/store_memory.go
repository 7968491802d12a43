package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	id "warden/pkg/domain"
	audit "warden/pkg/platform/audit"
)

// InMemoryStore keeps audit events and dead letters in process. Appends are
// idempotent on Event.ID.
type InMemoryStore struct {
	mu          sync.RWMutex
	events      map[id.UserID][]audit.Event
	seen        map[uuid.UUID]struct{}
	deadLetters map[uuid.UUID]audit.DeadLetter
}

func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{}
	s.Clear()
	return s
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.UserID][]audit.Event)
	s.seen = make(map[uuid.UUID]struct{})
	s.deadLetters = make(map[uuid.UUID]audit.DeadLetter)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID != uuid.Nil {
		if _, dup := s.seen[event.ID]; dup {
			return nil
		}
		s.seen[event.ID] = struct{}{}
	}
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[userID]...), nil
}

// ListAll returns every event ordered by timestamp.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, userEvents := range s.events {
		all = append(all, userEvents...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, nil
}

func (s *InMemoryStore) AppendDeadLetter(_ context.Context, dl audit.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLetters[dl.Event.ID] = dl
	return nil
}

func (s *InMemoryStore) ListDeadLetters(_ context.Context, limit int) ([]audit.DeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.DeadLetter, 0, len(s.deadLetters))
	for _, dl := range s.deadLetters {
		out = append(out, dl)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FailedAt.Before(out[j].FailedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) DeleteDeadLetter(_ context.Context, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadLetters, eventID)
	return nil
}
