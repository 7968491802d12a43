package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"warden/internal/access"
	accessmetrics "warden/internal/access/metrics"
	"warden/internal/compliance"
	"warden/internal/engine"
	enginehandler "warden/internal/engine/handler"
	"warden/internal/fraud"
	"warden/internal/fraud/device"
	fraudmetrics "warden/internal/fraud/metrics"
	"warden/internal/geo"
	geometrics "warden/internal/geo/metrics"
	"warden/internal/geo/providers/maxmind"
	"warden/internal/geo/providers/threatintel"
	geostore "warden/internal/geo/store"
	jwttoken "warden/internal/jwt_token"
	"warden/internal/kyc"
	kycmetrics "warden/internal/kyc/metrics"
	"warden/internal/kyc/providers/sandbox"
	"warden/internal/notify"
	"warden/internal/payment"
	paymentmetrics "warden/internal/payment/metrics"
	"warden/internal/payment/processors"
	"warden/internal/platform/config"
	"warden/internal/platform/httpserver"
	"warden/internal/platform/kafka"
	"warden/internal/platform/logger"
	"warden/internal/platform/metrics"
	"warden/internal/platform/redis"
	"warden/internal/platform/scheduler"
	"warden/internal/restriction"
	restrictionmetrics "warden/internal/restriction/metrics"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/audit/publisher"
	auditkafka "warden/pkg/platform/audit/sink/kafka"
	"warden/pkg/platform/jobs"
	"warden/pkg/platform/middleware/request"
	"warden/pkg/platform/privacy"
)

const (
	kycStallAfter    = 10 * time.Minute
	auditReplayBatch = 500
	bootstrapSubject = "bootstrap"
)

var euCountries = []string{
	"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IE",
	"IT", "LV", "LT", "LU", "MT", "NL", "PL", "PT", "RO", "SK", "SI", "ES", "SE",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("warden stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the services, then blocks serving HTTP, jobs and schedules until
// ctx is cancelled.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	for _, w := range cfg.Warnings() {
		log.Warn("configuration", "warning", w)
	}

	b, err := openBackends(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer b.Close()

	// Streaming: audit sink and AML report topic.
	var amlPublisher payment.Publisher = payment.LogPublisher{Logger: log}
	var sinks []audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kcfg := kafka.Config{Brokers: cfg.Kafka.Brokers, ClientID: cfg.Kafka.ClientID}
		producer, err := kafka.NewProducer(kcfg, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		sink := auditkafka.New(producer, cfg.Kafka.AuditTopicPrefix)
		topics := append(sink.Topics(), cfg.Kafka.AMLReportTopic)
		if err := producer.EnsureTopics(ctx, kcfg, topics...); err != nil {
			log.Warn("kafka topics not ensured; relying on broker auto-create", "error", err)
		}
		sinks = append(sinks, sink)
		amlPublisher = producer
	}

	auditor := publisher.NewPublisher(b.audit,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithWorkers(cfg.Audit.Workers),
		publisher.WithRetry(cfg.Audit.MaxAttempts, 100*time.Millisecond, 5*time.Second),
		publisher.WithSinks(sinks...),
		publisher.WithDeadLetterStore(b.deadLetters),
		publisher.WithMetrics(publisher.NewMetrics()),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	resolver, closeGeo, err := newResolver(ctx, cfg, b, log)
	if err != nil {
		return err
	}
	defer closeGeo()

	registry, err := restriction.NewRegistry(b.restrictions,
		restriction.WithLogger(log),
		restriction.WithMetrics(restrictionmetrics.New()),
		restriction.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}
	complianceSvc, err := compliance.NewService(b.rules, b.artifacts,
		compliance.WithLogger(log),
		compliance.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}
	accessSvc, err := access.New(resolver, registry,
		access.WithCompliance(complianceSvc),
		access.WithContentPolicy(complianceSvc),
		access.WithLogger(log),
		access.WithMetrics(accessmetrics.New()),
		access.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}

	kycSvc, err := kyc.New(b.kyc, sandbox.Documents{}, sandbox.Identity{}, sandbox.AML{}, b.queue,
		kyc.WithLogger(log),
		kyc.WithMetrics(kycmetrics.New()),
		kyc.WithAuditor(auditor),
		kyc.WithHasher(privacy.NewHasher([]byte(cfg.Audit.HashKey))),
		kyc.WithArtifactRecorder(complianceSvc),
		kyc.WithTimeout(cfg.KYC.ProviderTimeout),
	)
	if err != nil {
		return err
	}
	scorer, err := fraud.NewScorer(b.history,
		fraud.WithLogger(log),
		fraud.WithMetrics(fraudmetrics.New()),
		fraud.WithAuditor(auditor),
		fraud.WithDeviceDetector(device.Detector{}),
	)
	if err != nil {
		return err
	}
	procs, err := newProcessors()
	if err != nil {
		return err
	}
	gate, err := payment.NewGate(kycSvc, scorer, b.queue,
		payment.WithLogger(log),
		payment.WithMetrics(paymentmetrics.New()),
		payment.WithAuditor(auditor),
		payment.WithProcessors(procs),
		payment.WithMethodPolicy(complianceSvc),
	)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Services{
		Access:       accessSvc,
		Restrictions: registry,
		Compliance:   complianceSvc,
		KYC:          kycSvc,
		Fraud:        scorer,
		Payments:     gate,
	}, engine.WithLogger(log))
	if err != nil {
		return err
	}

	runner := jobs.NewRunner(b.queue,
		jobs.WithLogger(log),
		jobs.WithMetrics(jobs.NewMetrics()),
		jobs.WithConcurrency(cfg.Jobs.Concurrency),
		jobs.WithPollInterval(cfg.Jobs.PollInterval),
	)
	runner.Register(kyc.ProcessJobKind, kycSvc.ProcessHandler())
	runner.Register(notify.JobKind, notify.Handler(notify.LogSender{Logger: log}, auditor, log))
	runner.Register(payment.AMLReportJobKind, payment.AMLReportHandler(amlPublisher, cfg.Kafka.AMLReportTopic, auditor, log, time.Now))

	sched := scheduler.New(scheduler.WithLogger(log))
	tasks := []struct {
		name, spec string
		task       scheduler.Task
	}{
		{"restriction-sweep", cfg.Schedules.RestrictionSweep, func(ctx context.Context) error {
			_, err := registry.SweepExpired(ctx)
			return err
		}},
		{"kyc-expiry", cfg.Schedules.KYCExpiry, func(ctx context.Context) error {
			if _, err := kycSvc.ExpireStale(ctx); err != nil {
				return err
			}
			_, err := kycSvc.RequeueStalled(ctx, kycStallAfter)
			return err
		}},
		{"audit-replay", cfg.Schedules.AuditReplay, func(ctx context.Context) error {
			_, err := auditor.Replay(ctx, auditReplayBatch)
			return err
		}},
		{"jobs-reclaim", cfg.Schedules.JobsReclaim, func(ctx context.Context) error {
			_, err := runner.ReclaimStale(ctx)
			return err
		}},
	}
	for _, t := range tasks {
		if err := sched.Add(t.name, t.spec, t.task); err != nil {
			return err
		}
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	if cfg.Server.Env == "development" {
		logBootstrapToken(tokens, log)
	}
	srv := httpserver.New(cfg.Server.Addr, newRouter(eng, tokens, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner.Run(gctx)
		return nil
	})
	g.Go(func() error {
		sched.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return httpserver.Serve(gctx, srv, log)
	})
	return g.Wait()
}

func newRouter(eng *engine.Engine, tokens *jwttoken.JWTService, log *slog.Logger) http.Handler {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.Context)
	r.Use(m.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())
	enginehandler.New(eng, tokens, log).Register(r)
	return r
}

// newResolver builds the geo resolver from whatever collaborators are
// configured. Missing MaxMind data degrades every lookup rather than failing
// startup.
func newResolver(ctx context.Context, cfg config.Config, b *backends, log *slog.Logger) (*geo.Resolver, func(), error) {
	var closers []func() error
	var locator geo.Locator = maxmind.Unconfigured{}
	if cfg.Geo.MaxMindCityPath != "" {
		l, err := maxmind.OpenLocator(cfg.Geo.MaxMindCityPath)
		if err != nil {
			return nil, nil, err
		}
		locator = l
		closers = append(closers, l.Close)
	}

	var detector geo.Detector = threatintel.Disabled{}
	switch {
	case cfg.Geo.ThreatIntelURL != "" && cfg.Geo.ThreatIntelAPIKey != "":
		detector = threatintel.New(cfg.Geo.ThreatIntelURL, cfg.Geo.ThreatIntelAPIKey)
	case cfg.Geo.MaxMindAnonymousPath != "":
		d, err := maxmind.OpenDetector(cfg.Geo.MaxMindAnonymousPath)
		if err != nil {
			return nil, nil, err
		}
		detector = d
		closers = append(closers, d.Close)
	}

	opts := []geo.Option{
		geo.WithLogger(log),
		geo.WithMetrics(geometrics.New()),
		geo.WithTTL(cfg.Geo.CacheTTL),
		geo.WithTimeout(cfg.Geo.LookupTimeout),
	}
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable; geolocation cache is process-local", "error", err)
	}
	if rc != nil {
		opts = append(opts, geo.WithSharedCache(geostore.NewRedisCache(rc.Client, cfg.Geo.SharedCacheTTL)))
		closers = append(closers, rc.Close)
	}
	if b.analytics != nil {
		opts = append(opts, geo.WithAnalytics(b.analytics))
	}

	resolver, err := geo.NewResolver(locator, detector, opts...)
	if err != nil {
		return nil, nil, err
	}
	return resolver, func() {
		resolver.Close()
		for _, c := range closers {
			_ = c()
		}
	}, nil
}

func newProcessors() (*payment.Registry, error) {
	reg := payment.NewRegistry()
	for _, p := range []payment.Processor{
		processors.NewSandbox("eu-card", euCountries...),
		processors.NewSandbox("global-card"),
	} {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// logBootstrapToken prints a short-lived operator token holding every role
// so a local instance can be administered without an identity provider.
func logBootstrapToken(tokens *jwttoken.JWTService, log *slog.Logger) {
	token, err := tokens.GenerateOperatorToken(bootstrapSubject,
		[]string{jwttoken.RoleComplianceAdmin, jwttoken.RoleKYCReviewer}, time.Hour)
	if err != nil {
		log.Warn("bootstrap operator token not issued", "error", err)
		return
	}
	log.Info("development operator token issued", "token", token, "expires_in", time.Hour.String())
}
