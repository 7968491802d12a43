package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"warden/internal/compliance"
	compliancestore "warden/internal/compliance/store"
	"warden/internal/fraud"
	fraudstore "warden/internal/fraud/store"
	"warden/internal/geo"
	geostore "warden/internal/geo/store"
	"warden/internal/kyc"
	kycstore "warden/internal/kyc/store"
	"warden/internal/platform/config"
	"warden/internal/platform/migrations"
	"warden/internal/platform/postgres"
	"warden/internal/restriction"
	restrictionstore "warden/internal/restriction/store"
	"warden/pkg/platform/audit"
	auditmemory "warden/pkg/platform/audit/store/memory"
	auditpostgres "warden/pkg/platform/audit/store/postgres"
	"warden/pkg/platform/jobs"
	jobsmemory "warden/pkg/platform/jobs/memory"
	"warden/pkg/platform/jobs/pgqueue"
)

// backends holds the persistence of every module. Without DATABASE_URL all
// of it is process-local.
type backends struct {
	restrictions restriction.Store
	rules        compliance.RuleStore
	artifacts    compliance.ArtifactStore
	kyc          kyc.Store
	history      fraud.HistoryStore
	queue        jobs.Queue
	audit        audit.Store
	deadLetters  audit.DeadLetterStore
	analytics    geo.AnalyticsSink

	db   *sql.DB
	pool *pgxpool.Pool
}

func openBackends(ctx context.Context, cfg config.Database, logger *slog.Logger) (*backends, error) {
	if cfg.URL == "" {
		auditStore := auditmemory.NewInMemoryStore()
		return &backends{
			restrictions: restrictionstore.NewInMemoryStore(),
			rules:        compliancestore.NewInMemoryRules(compliance.DefaultRules()),
			artifacts:    compliancestore.NewInMemoryArtifacts(),
			kyc:          kycstore.NewInMemoryStore(),
			history:      fraudstore.NewInMemoryHistory(),
			queue:        jobsmemory.New(),
			audit:        auditStore,
			deadLetters:  auditStore,
		}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.InfoContext(ctx, "database migrations applied")
	}
	pool, err := postgres.Connect(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open job pool: %w", err)
	}

	auditStore := auditpostgres.New(db)
	return &backends{
		restrictions: restrictionstore.NewPostgres(db),
		rules:        compliancestore.NewPostgresRules(db),
		artifacts:    compliancestore.NewPostgresArtifacts(db),
		kyc:          kycstore.NewPostgres(db),
		history:      fraudstore.NewPostgresHistory(db),
		queue:        pgqueue.New(pool),
		audit:        auditStore,
		deadLetters:  auditStore,
		analytics:    geostore.NewPostgresAnalytics(db),
		db:           db,
		pool:         pool,
	}, nil
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
