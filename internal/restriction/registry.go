package restriction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"time"

	"warden/internal/restriction/metrics"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/cache"
	"warden/pkg/platform/sentinel"
	"warden/pkg/requestcontext"
)

const defaultRefresh = time.Minute

// Store persists restrictions.
type Store interface {
	Create(ctx context.Context, r *Restriction) error
	// Get returns sentinel.ErrNotFound for an unknown ID.
	Get(ctx context.Context, restrictionID id.RestrictionID) (*Restriction, error)
	// ListScope returns the active rules of exactly one (type, target) scope,
	// oldest first. An empty target is the global scope.
	ListScope(ctx context.Context, t Type, targetID string) ([]*Restriction, error)
	// Deactivate returns sentinel.ErrNotFound for an unknown ID and
	// sentinel.ErrInvalidState when the rule is already inactive.
	Deactivate(ctx context.Context, restrictionID id.RestrictionID, at time.Time) error
	// DeactivateExpired marks every active rule with ExpiresAt <= now inactive
	// and returns them.
	DeactivateExpired(ctx context.Context, now time.Time) ([]*Restriction, error)
}

type scope struct {
	typ    Type
	target string
}

type scopeEntry struct {
	rules    []Restriction
	loadedAt time.Time
}

// index is the immutable view published through the snapshot. versions count
// invalidations per scope so a slow loader cannot publish rules that an
// intervening write already superseded.
type index struct {
	entries  map[scope]scopeEntry
	versions map[scope]uint64
}

// Registry answers which restrictions apply to a (type, target) pair. Rule
// sets are cached per scope in a copy-on-write snapshot: readers never lock
// and always see a scope's old or new rule set in full. Writes invalidate the
// affected scope; entries also refresh after a bounded age so writes from
// other instances become visible.
type Registry struct {
	store    Store
	snapshot *cache.Snapshot[index]
	refresh  time.Duration
	auditor  audit.Emitter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(r *Registry) {
		r.auditor = a
	}
}

// WithRefresh bounds how long a cached scope is served before reloading.
func WithRefresh(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.refresh = d
		}
	}
}

func NewRegistry(store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, errors.New("restriction store is required")
	}
	r := &Registry{
		store:   store,
		refresh: defaultRefresh,
		logger:  slog.Default(),
		now:     time.Now,
		snapshot: cache.NewSnapshot(index{
			entries:  map[scope]scopeEntry{},
			versions: map[scope]uint64{},
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Applicable returns the effective rules for t: global rules first, then the
// rules specific to targetID. The result is the caller's to keep.
func (r *Registry) Applicable(ctx context.Context, t Type, targetID string) ([]Restriction, error) {
	now := r.now()
	global, err := r.scopeRules(ctx, scope{typ: t}, now)
	if err != nil {
		return nil, err
	}
	var specific []Restriction
	if targetID != "" {
		specific, err = r.scopeRules(ctx, scope{typ: t, target: targetID}, now)
		if err != nil {
			return nil, err
		}
	}

	out := make([]Restriction, 0, len(global)+len(specific))
	for _, set := range [][]Restriction{global, specific} {
		for i := range set {
			if set[i].EffectiveAt(now) {
				out = append(out, set[i])
			}
		}
	}
	return out, nil
}

// FirstViolation returns the first rule in rules that countryCode fails.
func FirstViolation(rules []Restriction, countryCode string) (*Restriction, bool) {
	for i := range rules {
		if !Evaluate(&rules[i], countryCode) {
			return &rules[i], true
		}
	}
	return nil, false
}

// Create validates, persists and publishes a new restriction.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*Restriction, error) {
	rest, err := New(req, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.store.Create(ctx, rest); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist restriction")
	}
	r.invalidate(scope{typ: rest.Type, target: rest.TargetID})
	r.metrics.IncChange("created", string(rest.Type))

	r.logger.InfoContext(ctx, "restriction created",
		"restriction_id", rest.ID,
		"type", rest.Type,
		"target_id", rest.TargetID,
		"whitelist", rest.IsWhitelist,
	)
	audit.EmitLogged(ctx, r.auditor, r.logger, audit.Event{
		Action:    string(audit.EventRestrictionCreated),
		Subject:   rest.ID.String(),
		Reason:    rest.Reason,
		ActorID:   rest.CreatedBy,
		RequestID: requestcontext.RequestID(ctx),
		Metadata: map[string]string{
			"type":         string(rest.Type),
			"target_id":    rest.TargetID,
			"is_whitelist": strconv.FormatBool(rest.IsWhitelist),
		},
	})
	return rest, nil
}

// Deactivate logically deletes a restriction.
func (r *Registry) Deactivate(ctx context.Context, restrictionID id.RestrictionID, actor string) error {
	rest, err := r.Get(ctx, restrictionID)
	if err != nil {
		return err
	}
	if err := r.store.Deactivate(ctx, restrictionID, r.now()); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "restriction not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.New(dErrors.CodeConflict, "restriction is already inactive")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate restriction")
	}
	r.invalidate(scope{typ: rest.Type, target: rest.TargetID})
	r.metrics.IncChange("deactivated", string(rest.Type))

	audit.EmitLogged(ctx, r.auditor, r.logger, audit.Event{
		Action:    string(audit.EventRestrictionDeactivated),
		Subject:   restrictionID.String(),
		ActorID:   actor,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// Get returns one restriction regardless of state.
func (r *Registry) Get(ctx context.Context, restrictionID id.RestrictionID) (*Restriction, error) {
	rest, err := r.store.Get(ctx, restrictionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "restriction not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load restriction")
	}
	return rest, nil
}

// SweepExpired deactivates expired rules and drops them from the cache.
func (r *Registry) SweepExpired(ctx context.Context) (int, error) {
	expired, err := r.store.DeactivateExpired(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired restrictions: %w", err)
	}
	for _, rest := range expired {
		r.invalidate(scope{typ: rest.Type, target: rest.TargetID})
		r.metrics.IncChange("expired", string(rest.Type))
	}
	if len(expired) > 0 {
		r.logger.InfoContext(ctx, "expired restrictions swept", "count", len(expired))
		audit.EmitLogged(ctx, r.auditor, r.logger, audit.Event{
			Action:   string(audit.EventRestrictionsSwept),
			Subject:  "restrictions",
			Metadata: map[string]string{"count": strconv.Itoa(len(expired))},
		})
	}
	return len(expired), nil
}

func (r *Registry) scopeRules(ctx context.Context, s scope, now time.Time) ([]Restriction, error) {
	idx := r.snapshot.Load()
	if e, ok := idx.entries[s]; ok && now.Sub(e.loadedAt) < r.refresh {
		r.metrics.IncCache("hit")
		return e.rules, nil
	}
	r.metrics.IncCache("miss")
	version := idx.versions[s]

	loaded, err := r.store.ListScope(ctx, s.typ, s.target)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "restriction store unavailable")
	}
	rules := make([]Restriction, 0, len(loaded))
	for _, rest := range loaded {
		if err := rest.Validate(); err != nil {
			r.logger.ErrorContext(ctx, "skipping invalid restriction", "restriction_id", rest.ID, "error", err)
			continue
		}
		rules = append(rules, *rest)
	}

	r.snapshot.Update(func(cur index) index {
		if cur.versions[s] != version {
			return cur
		}
		next := index{entries: maps.Clone(cur.entries), versions: cur.versions}
		next.entries[s] = scopeEntry{rules: rules, loadedAt: now}
		return next
	})
	return rules, nil
}

func (r *Registry) invalidate(s scope) {
	r.snapshot.Update(func(cur index) index {
		next := index{
			entries:  maps.Clone(cur.entries),
			versions: maps.Clone(cur.versions),
		}
		delete(next.entries, s)
		next.versions[s]++
		return next
	})
}
