package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	dErrors "warden/pkg/domain-errors"
)

// Config is the full service configuration.
type Config struct {
	Server    Server
	Database  Database
	Redis     RedisConfig
	Kafka     Kafka
	Geo       Geo
	KYC       KYC
	Auth      Auth
	Audit     Audit
	Jobs      Jobs
	Schedules Schedules
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string
	Env       string
	LogLevel  string
	LogFormat string
}

type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Kafka struct {
	Brokers          []string
	ClientID         string
	AuditTopicPrefix string
	AMLReportTopic   string
}

// Geo configures the geolocation and threat-intelligence collaborators.
type Geo struct {
	MaxMindCityPath      string
	MaxMindAnonymousPath string
	ThreatIntelURL       string
	ThreatIntelAPIKey    string
	CacheTTL             time.Duration
	LookupTimeout        time.Duration
	SharedCacheTTL       time.Duration
}

type KYC struct {
	ProviderTimeout time.Duration
}

type Auth struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

type Audit struct {
	BufferSize  int
	Workers     int
	MaxAttempts int
	HashKey     string
}

type Jobs struct {
	Concurrency  int
	PollInterval time.Duration
}

// Schedules are cron expressions for periodic sweeps.
type Schedules struct {
	RestrictionSweep string
	KYCExpiry        string
	AuditReplay      string
	JobsReclaim      string
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "read .env")
	}
	return FromEnv(), nil
}

// FromEnv builds the config from environment variables. Every value has a
// default so a bare process starts in a conservative local mode.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:      getenv("WARDEN_ADDR", ":8080"),
			Env:       getenv("APP_ENV", "development"),
			LogLevel:  getenv("LOG_LEVEL", "info"),
			LogFormat: getenv("LOG_FORMAT", "text"),
		},
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getenvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 200*time.Millisecond),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 200*time.Millisecond),
		},
		Kafka: Kafka{
			Brokers:          splitList(os.Getenv("KAFKA_BROKERS")),
			ClientID:         getenv("KAFKA_CLIENT_ID", "warden"),
			AuditTopicPrefix: getenv("KAFKA_AUDIT_TOPIC_PREFIX", "warden.audit"),
			AMLReportTopic:   getenv("KAFKA_AML_TOPIC", "warden.aml.reports"),
		},
		Geo: Geo{
			MaxMindCityPath:      os.Getenv("MAXMIND_CITY_DB"),
			MaxMindAnonymousPath: os.Getenv("MAXMIND_ANONYMOUS_DB"),
			ThreatIntelURL:       os.Getenv("THREAT_INTEL_URL"),
			ThreatIntelAPIKey:    os.Getenv("THREAT_INTEL_API_KEY"),
			CacheTTL:             getenvDuration("GEO_CACHE_TTL", time.Hour),
			LookupTimeout:        getenvDuration("GEO_LOOKUP_TIMEOUT", 500*time.Millisecond),
			SharedCacheTTL:       getenvDuration("GEO_SHARED_CACHE_TTL", time.Hour),
		},
		KYC: KYC{
			ProviderTimeout: getenvDuration("KYC_PROVIDER_TIMEOUT", 5*time.Second),
		},
		Auth: Auth{
			JWTSigningKey: getenv("JWT_SIGNING_KEY", devSigningKey),
			Issuer:        getenv("JWT_ISSUER", "warden"),
			Audience:      getenv("JWT_AUDIENCE", "warden-operators"),
		},
		Audit: Audit{
			BufferSize:  getenvInt("AUDIT_BUFFER_SIZE", 1024),
			Workers:     getenvInt("AUDIT_WORKERS", 2),
			MaxAttempts: getenvInt("AUDIT_MAX_ATTEMPTS", 5),
			HashKey:     getenv("AUDIT_HASH_KEY", "dev-audit-hash-key"),
		},
		Jobs: Jobs{
			Concurrency:  getenvInt("JOB_CONCURRENCY", 4),
			PollInterval: getenvDuration("JOB_POLL_INTERVAL", 500*time.Millisecond),
		},
		Schedules: Schedules{
			RestrictionSweep: getenv("CRON_RESTRICTION_SWEEP", "@every 1m"),
			KYCExpiry:        getenv("CRON_KYC_EXPIRY", "@every 15m"),
			AuditReplay:      getenv("CRON_AUDIT_REPLAY", "@every 5m"),
			JobsReclaim:      getenv("CRON_JOBS_RECLAIM", "@every 1m"),
		},
	}
}

// Warnings lists missing collaborator settings. Each one makes the service
// fall back to a conservative default rather than refuse to start.
func (c Config) Warnings() []error {
	var out []error
	warn := func(msg string) {
		out = append(out, dErrors.New(dErrors.CodeConfiguration, msg))
	}
	if c.Database.URL == "" {
		warn("DATABASE_URL not set; using in-memory stores and job queue")
	}
	if c.Redis.URL == "" {
		warn("REDIS_URL not set; geolocation cache is process-local")
	}
	if len(c.Kafka.Brokers) == 0 {
		warn("KAFKA_BROKERS not set; audit events and AML reports are not streamed")
	}
	if c.Geo.MaxMindCityPath == "" {
		warn("MAXMIND_CITY_DB not set; every lookup resolves to a degraded record")
	}
	if c.Geo.ThreatIntelURL == "" || c.Geo.ThreatIntelAPIKey == "" {
		warn("threat intelligence credentials missing; VPN and threat signals come from the offline database only")
	}
	if c.Auth.JWTSigningKey == devSigningKey {
		warn("JWT_SIGNING_KEY not set; operator tokens use the development key")
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
