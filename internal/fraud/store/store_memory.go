package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"warden/internal/fraud"
	id "warden/pkg/domain"
)

// InMemoryHistory keeps transactions per user, oldest first.
type InMemoryHistory struct {
	mu  sync.RWMutex
	txs map[id.UserID][]fraud.Transaction
}

func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{txs: make(map[id.UserID][]fraud.Transaction)}
}

func (s *InMemoryHistory) Record(_ context.Context, tx fraud.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.txs[tx.UserID], tx)
	slices.SortStableFunc(list, func(a, b fraud.Transaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	s.txs[tx.UserID] = list
	return nil
}

func (s *InMemoryHistory) Recent(_ context.Context, userID id.UserID, since time.Time) ([]fraud.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []fraud.Transaction
	list := s.txs[userID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].OccurredAt.Before(since) {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}
