package geo

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"warden/internal/geo/metrics"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/cache"
	"warden/pkg/platform/circuit"
	"warden/pkg/platform/privacy"
	"warden/pkg/platform/provider"
	"warden/pkg/platform/sentinel"
)

const (
	defaultTTL        = time.Hour
	defaultTimeout    = 500 * time.Millisecond
	defaultMaxEntries = 10_000
	defaultRetries    = 2
	persistBuffer     = 256
	persistTimeout    = 2 * time.Second
)

// Locator resolves an address to a location.
type Locator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Detector reports anonymizer and threat signals for an address.
type Detector interface {
	Detect(ctx context.Context, ip string) (Signals, error)
}

// SharedCache is a cross-process cache tier consulted on a local miss.
// Get returns sentinel.ErrNotFound on a miss.
type SharedCache interface {
	Get(ctx context.Context, ip string) (IPGeolocation, error)
	Set(ctx context.Context, record IPGeolocation) error
}

// AnalyticsSink receives every freshly resolved record.
type AnalyticsSink interface {
	RecordLookup(ctx context.Context, record IPGeolocation) error
}

// Resolver turns an IP into an IPGeolocation. Fresh records are served from
// an in-process TTL cache keyed by the normalized address; misses call both
// collaborators in parallel under a single timeout. Collaborator failure never
// surfaces as an error: the caller gets a degraded record instead.
type Resolver struct {
	locator   Locator
	detector  Detector
	shared    SharedCache
	analytics AnalyticsSink
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	ttl        time.Duration
	timeout    time.Duration
	retries    int
	maxEntries int

	cache   *cache.TTL[string, IPGeolocation]
	flights singleflight.Group

	persistMu sync.RWMutex
	persistCh chan IPGeolocation
	closed    bool
	wg        sync.WaitGroup
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithTTL sets how long a resolved record stays fresh. Default 1h.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithTimeout bounds the combined collaborator call. Default 500ms.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetries sets the attempts per collaborator within the timeout.
func WithRetries(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.retries = n
		}
	}
}

func WithMaxEntries(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxEntries = n
		}
	}
}

func WithSharedCache(shared SharedCache) Option {
	return func(r *Resolver) {
		r.shared = shared
	}
}

func WithAnalytics(sink AnalyticsSink) Option {
	return func(r *Resolver) {
		r.analytics = sink
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Resolver) {
		r.breaker = b
	}
}

// NewResolver builds a resolver. Call Close to flush background persistence.
func NewResolver(locator Locator, detector Detector, opts ...Option) (*Resolver, error) {
	if locator == nil {
		return nil, errors.New("geolocation locator is required")
	}
	if detector == nil {
		return nil, errors.New("threat detector is required")
	}
	r := &Resolver{
		locator:    locator,
		detector:   detector,
		logger:     slog.Default(),
		now:        time.Now,
		ttl:        defaultTTL,
		timeout:    defaultTimeout,
		retries:    defaultRetries,
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = circuit.New("geo")
	}
	r.cache = cache.NewTTL[string, IPGeolocation](r.ttl,
		cache.WithClock(r.now),
		cache.WithMaxEntries(r.maxEntries),
	)
	if r.shared != nil || r.analytics != nil {
		r.persistCh = make(chan IPGeolocation, persistBuffer)
		r.wg.Add(1)
		go r.persistLoop()
	}
	return r, nil
}

// Resolve returns the geolocation of ip. The only error is a malformed address.
func (r *Resolver) Resolve(ctx context.Context, ip string) (IPGeolocation, error) {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return IPGeolocation{}, dErrors.New(dErrors.CodeValidation, "ip must be a valid IPv4 or IPv6 address")
	}
	key := addr.String()

	if rec, ok := r.cache.Get(key); ok {
		r.metrics.IncLookup("cache_hit")
		return rec, nil
	}

	// Concurrent misses for one address share a single collaborator round trip.
	v, _, _ := r.flights.Do(key, func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), key), nil
	})
	return v.(IPGeolocation), nil
}

// Invalidate drops ip from the local cache.
func (r *Resolver) Invalidate(ip string) {
	if addr := net.ParseIP(strings.TrimSpace(ip)); addr != nil {
		r.cache.Invalidate(addr.String())
	}
}

func (r *Resolver) fetch(ctx context.Context, ip string) IPGeolocation {
	now := r.now()

	if rec, ok := r.fromShared(ctx, ip, now); ok {
		r.cache.SetAt(ip, rec, rec.LastUpdated)
		r.metrics.IncLookup("shared_hit")
		return rec
	}

	if !r.breaker.Allow(now) {
		r.metrics.IncLookup("degraded")
		return DegradedRecord(ip, now)
	}

	start := time.Now()
	rec, err := r.lookup(ctx, ip, now)
	r.metrics.ObserveLookup(time.Since(start))
	if err != nil {
		_, change := r.breaker.RecordFailureAt(now)
		if change.Opened {
			r.metrics.SetBreakerOpen(true)
			r.logger.WarnContext(ctx, "geolocation circuit opened", "breaker", r.breaker.Name())
		}
		r.logger.WarnContext(ctx, "geolocation degraded",
			"ip_prefix", privacy.AnonymizeIP(ip),
			"category", provider.CategoryOf(err),
			"error", err,
		)
		r.metrics.IncLookup("degraded")
		return rec
	}

	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.metrics.SetBreakerOpen(false)
		r.logger.InfoContext(ctx, "geolocation circuit closed", "breaker", r.breaker.Name())
	}
	r.cache.SetAt(ip, rec, rec.LastUpdated)
	r.metrics.IncLookup("resolved")
	r.persist(rec)
	return rec
}

// lookup runs both collaborators under one deadline. A locator failure yields
// a fully degraded record. A detector failure keeps the location but marks
// the record degraded so it is neither cached nor trusted for anonymizer
// signals.
func (r *Resolver) lookup(ctx context.Context, ip string, now time.Time) (IPGeolocation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		loc    Location
		sig    Signals
		sigErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loc, err = provider.RetryRead(gctx, r.retries, func(c context.Context) (Location, error) {
			l, err := r.locator.Locate(c, ip)
			return l, provider.Classify("geolocation", err)
		})
		if err != nil {
			r.metrics.IncCollaboratorError("geolocation", string(provider.CategoryOf(err)))
		}
		return err
	})
	g.Go(func() error {
		sig, sigErr = provider.RetryRead(gctx, r.retries, func(c context.Context) (Signals, error) {
			s, err := r.detector.Detect(c, ip)
			return s, provider.Classify("threat", err)
		})
		if sigErr != nil {
			r.metrics.IncCollaboratorError("threat", string(provider.CategoryOf(sigErr)))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return DegradedRecord(ip, now), err
	}
	if loc.CountryCode == "" {
		return DegradedRecord(ip, now), provider.NewError(provider.CategoryBadData, "geolocation", "no country for address", nil)
	}

	loc.CountryCode = strings.ToUpper(loc.CountryCode)
	if sigErr != nil {
		rec := Merge(ip, loc, Signals{ThreatLevel: ThreatLow}, now)
		rec.Degraded = true
		return rec, sigErr
	}
	return Merge(ip, loc, sig, now), nil
}

func (r *Resolver) fromShared(ctx context.Context, ip string, now time.Time) (IPGeolocation, bool) {
	if r.shared == nil {
		return IPGeolocation{}, false
	}
	rec, err := r.shared.Get(ctx, ip)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.WarnContext(ctx, "shared geolocation cache read failed", "error", err)
		}
		return IPGeolocation{}, false
	}
	if !rec.FreshAt(now, r.ttl) {
		return IPGeolocation{}, false
	}
	return rec, true
}

// persist hands rec to the background writer without ever blocking.
func (r *Resolver) persist(rec IPGeolocation) {
	r.persistMu.RLock()
	defer r.persistMu.RUnlock()
	if r.persistCh == nil || r.closed {
		return
	}
	select {
	case r.persistCh <- rec:
	default:
		r.metrics.IncPersistDropped()
	}
}

func (r *Resolver) persistLoop() {
	defer r.wg.Done()
	for rec := range r.persistCh {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if r.shared != nil {
			if err := r.shared.Set(ctx, rec); err != nil {
				r.logger.Warn("shared geolocation cache write failed", "error", err)
			}
		}
		if r.analytics != nil {
			if err := r.analytics.RecordLookup(ctx, rec); err != nil {
				r.logger.Warn("geolocation analytics write failed", "error", err)
			}
		}
		cancel()
	}
}

// Close stops background persistence after draining queued records.
func (r *Resolver) Close() {
	r.persistMu.Lock()
	if !r.closed && r.persistCh != nil {
		close(r.persistCh)
	}
	r.closed = true
	r.persistMu.Unlock()
	r.wg.Wait()
}
