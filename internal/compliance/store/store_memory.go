package store

import (
	"context"
	"slices"
	"sync"

	"warden/internal/compliance"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

// InMemoryRules serves a fixed rule table.
type InMemoryRules struct {
	rules map[string]compliance.Rule
}

func NewInMemoryRules(rules []compliance.Rule) *InMemoryRules {
	m := make(map[string]compliance.Rule, len(rules))
	for _, r := range rules {
		m[r.Country] = r
	}
	return &InMemoryRules{rules: m}
}

func (s *InMemoryRules) Rule(_ context.Context, countryCode string) (*compliance.Rule, error) {
	r, ok := s.rules[countryCode]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

// InMemoryArtifacts keeps the latest artifact of each kind per user.
type InMemoryArtifacts struct {
	mu        sync.RWMutex
	artifacts map[id.UserID]map[compliance.ArtifactKind]compliance.Artifact
}

func NewInMemoryArtifacts() *InMemoryArtifacts {
	return &InMemoryArtifacts{artifacts: make(map[id.UserID]map[compliance.ArtifactKind]compliance.Artifact)}
}

func (s *InMemoryArtifacts) Record(_ context.Context, a compliance.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKind, ok := s.artifacts[a.UserID]
	if !ok {
		byKind = make(map[compliance.ArtifactKind]compliance.Artifact)
		s.artifacts[a.UserID] = byKind
	}
	byKind[a.Kind] = a
	return nil
}

func (s *InMemoryArtifacts) Kinds(_ context.Context, userID id.UserID) ([]compliance.ArtifactKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kinds := make([]compliance.ArtifactKind, 0, len(s.artifacts[userID]))
	for k := range s.artifacts[userID] {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds, nil
}
