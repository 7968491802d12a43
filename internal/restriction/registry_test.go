package restriction_test

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/restriction"
	"warden/internal/restriction/mocks"
	"warden/internal/restriction/store"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/sentinel"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
}

func (e *recordingEmitter) Emit(_ context.Context, event audit.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Action)
	}
	return out
}

type RegistrySuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	store   *store.InMemoryStore
	emitter *recordingEmitter
	reg     *restriction.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = store.NewInMemoryStore()
	s.emitter = &recordingEmitter{}
	s.reg = s.newRegistry(s.store)
}

func (s *RegistrySuite) newRegistry(st restriction.Store) *restriction.Registry {
	reg, err := restriction.NewRegistry(st,
		restriction.WithClock(func() time.Time { return s.now }),
		restriction.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		restriction.WithAuditor(s.emitter),
	)
	s.Require().NoError(err)
	return reg
}

func (s *RegistrySuite) create(t restriction.Type, target string, whitelist bool, countries ...string) *restriction.Restriction {
	r, err := s.reg.Create(s.ctx, restriction.CreateRequest{
		Type:        t,
		TargetID:    target,
		Countries:   countries,
		IsWhitelist: whitelist,
		Reason:      "rule for " + target,
		CreatedBy:   "ops",
	})
	s.Require().NoError(err)
	return r
}

func (s *RegistrySuite) TestNewRegistryRequiresStore() {
	_, err := restriction.NewRegistry(nil)
	s.ErrorContains(err, "restriction store is required")
}

func (s *RegistrySuite) TestApplicable_GlobalRulesComeFirst() {
	specific := s.create(restriction.TypeContent, "video-42", false, "FR")
	s.now = s.now.Add(time.Second)
	global := s.create(restriction.TypeContent, "", false, "DE")

	rules, err := s.reg.Applicable(s.ctx, restriction.TypeContent, "video-42")
	s.Require().NoError(err)
	s.Require().Len(rules, 2)
	s.Equal(global.ID, rules[0].ID)
	s.Equal(specific.ID, rules[1].ID)
}

func (s *RegistrySuite) TestApplicable_ScopesByTypeAndTarget() {
	s.create(restriction.TypeContent, "video-42", false, "FR")
	s.create(restriction.TypePayment, "", false, "RU")

	rules, err := s.reg.Applicable(s.ctx, restriction.TypeContent, "video-7")
	s.Require().NoError(err)
	s.Empty(rules)

	rules, err = s.reg.Applicable(s.ctx, restriction.TypePayment, "")
	s.Require().NoError(err)
	s.Len(rules, 1)
}

func (s *RegistrySuite) TestCreate_InvalidatesCachedScope() {
	rules, err := s.reg.Applicable(s.ctx, restriction.TypeFeature, "beta")
	s.Require().NoError(err)
	s.Empty(rules)

	s.create(restriction.TypeFeature, "beta", true, "US")

	rules, err = s.reg.Applicable(s.ctx, restriction.TypeFeature, "beta")
	s.Require().NoError(err)
	s.Len(rules, 1, "a new rule is visible on the next read without waiting for refresh")
	s.Contains(s.emitter.actions(), string(audit.EventRestrictionCreated))
}

func (s *RegistrySuite) TestCreate_RejectsInvalidRequest() {
	_, err := s.reg.Create(s.ctx, restriction.CreateRequest{Type: restriction.TypeContent, Reason: "x", CreatedBy: "ops"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *RegistrySuite) TestApplicable_FiltersExpiredRules() {
	expiry := s.now.Add(time.Hour)
	_, err := s.reg.Create(s.ctx, restriction.CreateRequest{
		Type:      restriction.TypeContent,
		Countries: []string{"DE"},
		Reason:    "temporary",
		CreatedBy: "ops",
		ExpiresAt: &expiry,
	})
	s.Require().NoError(err)

	rules, err := s.reg.Applicable(s.ctx, restriction.TypeContent, "")
	s.Require().NoError(err)
	s.Len(rules, 1)

	s.now = expiry
	rules, err = s.reg.Applicable(s.ctx, restriction.TypeContent, "")
	s.Require().NoError(err)
	s.Empty(rules, "cached rules are filtered against the clock on every read")
}

func (s *RegistrySuite) TestDeactivate() {
	r := s.create(restriction.TypeUserAccess, "", false, "BR")

	s.Require().NoError(s.reg.Deactivate(s.ctx, r.ID, "ops"))
	rules, err := s.reg.Applicable(s.ctx, restriction.TypeUserAccess, "")
	s.Require().NoError(err)
	s.Empty(rules)

	got, err := s.reg.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.False(got.IsActive, "deactivated rules are kept, never hard deleted")

	err = s.reg.Deactivate(s.ctx, r.ID, "ops")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	err = s.reg.Deactivate(s.ctx, id.NewRestrictionID(), "ops")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RegistrySuite) TestSweepExpired() {
	expiry := s.now.Add(time.Minute)
	_, err := s.reg.Create(s.ctx, restriction.CreateRequest{
		Type:      restriction.TypePayment,
		Countries: []string{"NG"},
		Reason:    "temporary",
		CreatedBy: "ops",
		ExpiresAt: &expiry,
	})
	s.Require().NoError(err)
	s.create(restriction.TypePayment, "", false, "GH")

	s.now = expiry.Add(time.Second)
	n, err := s.reg.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Contains(s.emitter.actions(), string(audit.EventRestrictionsSwept))

	n, err = s.reg.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RegistrySuite) TestFirstViolation() {
	rules := []restriction.Restriction{
		{Type: restriction.TypeContent, BlockedCountries: []string{"DE"}},
		{Type: restriction.TypeContent, AllowedCountries: []string{"US"}, IsWhitelist: true, Reason: "US only"},
	}
	_, violated := restriction.FirstViolation(rules, "US")
	s.False(violated)

	r, violated := restriction.FirstViolation(rules, "FR")
	s.True(violated)
	s.Equal("US only", r.Reason)
}

func (s *RegistrySuite) TestApplicable_CachesScopeUntilRefresh() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	reg := s.newRegistry(st)

	rule := &restriction.Restriction{
		ID:               id.NewRestrictionID(),
		Type:             restriction.TypeContent,
		BlockedCountries: []string{"DE"},
		AllowedCountries: []string{},
		IsActive:         true,
	}
	st.EXPECT().ListScope(gomock.Any(), restriction.TypeContent, "").Return([]*restriction.Restriction{rule}, nil).Times(2)

	for range 3 {
		rules, err := reg.Applicable(s.ctx, restriction.TypeContent, "")
		s.Require().NoError(err)
		s.Len(rules, 1)
	}

	s.now = s.now.Add(2 * time.Minute)
	_, err := reg.Applicable(s.ctx, restriction.TypeContent, "")
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestApplicable_SkipsRulesBreakingTheInvariant() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	reg := s.newRegistry(st)

	broken := &restriction.Restriction{
		ID:               id.NewRestrictionID(),
		BlockedCountries: []string{"DE"},
		AllowedCountries: []string{"FR"},
		IsActive:         true,
	}
	st.EXPECT().ListScope(gomock.Any(), restriction.TypeContent, "").Return([]*restriction.Restriction{broken}, nil)

	rules, err := reg.Applicable(s.ctx, restriction.TypeContent, "")
	s.Require().NoError(err)
	s.Empty(rules)
}

func (s *RegistrySuite) TestApplicable_StoreFailureIsUnavailable() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	reg := s.newRegistry(st)
	st.EXPECT().ListScope(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := reg.Applicable(s.ctx, restriction.TypePayment, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *RegistrySuite) TestDeactivate_StoreNotFound() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	reg := s.newRegistry(st)
	st.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	err := reg.Deactivate(s.ctx, id.NewRestrictionID(), "ops")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RegistrySuite) TestConcurrentReadsDuringWrites() {
	s.create(restriction.TypeContent, "", false, "DE")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				rules, err := s.reg.Applicable(s.ctx, restriction.TypeContent, "")
				if err != nil {
					s.T().Error(err)
					return
				}
				for _, r := range rules {
					if r.Validate() != nil {
						s.T().Error("observed a partially built rule set")
					}
				}
			}
		}()
	}
	for range 10 {
		s.create(restriction.TypeContent, "", true, "US")
	}
	wg.Wait()
}
