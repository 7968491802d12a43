package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"warden/internal/kyc"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

// InMemoryStore keeps verification requests and level grants in maps.
type InMemoryStore struct {
	mu            sync.RWMutex
	verifications map[id.VerificationID]*kyc.Verification
	levels        map[id.UserID]kyc.LevelGrant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		verifications: make(map[id.VerificationID]*kyc.Verification),
		levels:        make(map[id.UserID]kyc.LevelGrant),
	}
}

func (s *InMemoryStore) Create(_ context.Context, v *kyc.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.verifications[v.ID]; exists {
		return sentinel.ErrConflict
	}
	if v.Status.Active() && s.activeLocked(v.UserID) != nil {
		return sentinel.ErrConflict
	}
	s.verifications[v.ID] = clone(v)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, verificationID id.VerificationID) (*kyc.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[verificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(v), nil
}

func (s *InMemoryStore) ActiveForUser(_ context.Context, userID id.UserID) (*kyc.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v := s.activeLocked(userID); v != nil {
		return clone(v), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Transition(_ context.Context, v *kyc.Verification, from kyc.Status, grant *kyc.LevelGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.verifications[v.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Status != from {
		return sentinel.ErrInvalidState
	}
	s.verifications[v.ID] = clone(v)
	if grant != nil {
		s.levels[grant.UserID] = *grant
	}
	return nil
}

func (s *InMemoryStore) ListExpired(_ context.Context, now time.Time, limit int) ([]*kyc.Verification, error) {
	return s.list(limit, func(v *kyc.Verification) bool {
		return v.ExpiredAt(now)
	}), nil
}

func (s *InMemoryStore) ListStalled(_ context.Context, cutoff time.Time, limit int) ([]*kyc.Verification, error) {
	return s.list(limit, func(v *kyc.Verification) bool {
		waiting := v.Status == kyc.StatusPending || (v.Status == kyc.StatusProcessing && v.ReviewedAt == nil)
		return waiting && !v.SubmittedAt.After(cutoff)
	}), nil
}

func (s *InMemoryStore) Level(_ context.Context, userID id.UserID) (kyc.LevelGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.levels[userID]
	if !ok {
		return kyc.LevelGrant{}, sentinel.ErrNotFound
	}
	return g, nil
}

func (s *InMemoryStore) list(limit int, match func(*kyc.Verification) bool) []*kyc.Verification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*kyc.Verification
	for _, v := range s.verifications {
		if match(v) {
			out = append(out, clone(v))
		}
	}
	slices.SortFunc(out, func(a, b *kyc.Verification) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *InMemoryStore) activeLocked(userID id.UserID) *kyc.Verification {
	for _, v := range s.verifications {
		if v.UserID == userID && v.Status.Active() {
			return v
		}
	}
	return nil
}

func clone(v *kyc.Verification) *kyc.Verification {
	c := *v
	c.Documents = slices.Clone(v.Documents)
	if v.ReviewedAt != nil {
		t := *v.ReviewedAt
		c.ReviewedAt = &t
	}
	return &c
}
