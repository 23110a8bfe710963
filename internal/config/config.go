// Package config loads the process configuration from FEDSTORE_* environment
// variables and wires the federated stores over the configured backends.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fedstore/internal/adapters/mongo"
	"fedstore/internal/adapters/postgres"
	"fedstore/internal/adapters/redis"
	"fedstore/internal/adapters/sqlite"
	"fedstore/internal/archive"
	"fedstore/internal/federation"
	"fedstore/pkg/domain"
)

// Config holds every tunable of the process.
type Config struct {
	PostgresDSN string `env:"FEDSTORE_POSTGRES_DSN"`
	MongoURI    string `env:"FEDSTORE_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"FEDSTORE_MONGO_DB" envDefault:"events"`
	SQLitePath  string `env:"FEDSTORE_SQLITE_PATH" envDefault:"forms.db"`
	RedisAddr   string `env:"FEDSTORE_REDIS_ADDR" envDefault:"localhost:6379"`

	// AdapterTimeout bounds each store's round trip during fan-out reads.
	AdapterTimeout time.Duration `env:"FEDSTORE_ADAPTER_TIMEOUT" envDefault:"5s"`

	ArchiveDriver     string `env:"FEDSTORE_ARCHIVE_DRIVER" envDefault:"fs"`
	ArchiveFSRoot     string `env:"FEDSTORE_ARCHIVE_FS_ROOT" envDefault:"./exportdata"`
	ArchiveS3Bucket   string `env:"FEDSTORE_ARCHIVE_S3_BUCKET"`
	ArchiveS3Region   string `env:"FEDSTORE_ARCHIVE_S3_REGION"`
	ArchiveS3Endpoint string `env:"FEDSTORE_ARCHIVE_S3_ENDPOINT"`
	ArchiveS3Path     bool   `env:"FEDSTORE_ARCHIVE_S3_PATH_STYLE"`
	ArchiveS3KeyID    string `env:"FEDSTORE_ARCHIVE_S3_ACCESS_KEY_ID"`
	ArchiveS3Secret   string `env:"FEDSTORE_ARCHIVE_S3_SECRET_ACCESS_KEY"`
	ArchiveS3Token    string `env:"FEDSTORE_ARCHIVE_S3_SESSION_TOKEN"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ArchiveConfig translates the environment into an archive backend config.
func (c Config) ArchiveConfig() archive.Config {
	return archive.Config{
		Driver:         archive.Driver(c.ArchiveDriver),
		FSRoot:         c.ArchiveFSRoot,
		S3Bucket:       c.ArchiveS3Bucket,
		S3Region:       c.ArchiveS3Region,
		S3Endpoint:     c.ArchiveS3Endpoint,
		S3PathStyle:    c.ArchiveS3Path,
		S3AccessKeyID:  c.ArchiveS3KeyID,
		S3SecretKey:    c.ArchiveS3Secret,
		S3SessionToken: c.ArchiveS3Token,
	}
}

// Stores bundles the three federated facades.
type Stores struct {
	Registrations *federation.Store[domain.Registration]
	Contacts      *federation.Store[domain.ContactSubmission]
	Signups       *federation.Store[domain.EmailSignup]
}

// Open connects every configured backend and assembles the federated stores.
// The returned close function releases all connections; it is safe to call
// after a partial failure has already been returned as an error.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (Stores, func(context.Context), error) {
	if log == nil {
		log = zap.NewNop()
	}

	pg, err := postgres.Open(cfg.PostgresDSN, log)
	if err != nil {
		return Stores{}, nil, err
	}
	closers := []func(context.Context){func(context.Context) { _ = pg.Close() }}
	closeAll := func(ctx context.Context) {
		for _, fn := range closers {
			fn(ctx)
		}
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}

	mg, err := mongo.Open(cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}
	closers = append(closers, func(ctx context.Context) { _ = mg.Close(ctx) })

	forms, err := sqlite.Open(cfg.SQLitePath, log)
	if err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}
	closers = append(closers, func(context.Context) { _ = forms.Close() })
	if err := forms.EnsureSchema(ctx); err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}

	mailer := redis.Open(cfg.RedisAddr, log)
	closers = append(closers, func(context.Context) { _ = mailer.Close() })

	metrics := federation.NewPrometheusRecorder(prometheus.DefaultRegisterer, "")

	regs, err := federation.New(federation.RegistrationType(),
		[]federation.Adapter[domain.Registration]{pg.Registrations(), mg.Registrations()},
		federation.WithLogger[domain.Registration](log),
		federation.WithMetrics[domain.Registration](metrics),
		federation.WithAdapterTimeout[domain.Registration](cfg.AdapterTimeout))
	if err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}

	cons, err := federation.New(federation.ContactType(),
		[]federation.Adapter[domain.ContactSubmission]{pg.Contacts(), mg.Contacts(), forms.Contacts()},
		federation.WithLogger[domain.ContactSubmission](log),
		federation.WithMetrics[domain.ContactSubmission](metrics),
		federation.WithAdapterTimeout[domain.ContactSubmission](cfg.AdapterTimeout))
	if err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}

	sigs, err := federation.New(federation.SignupType(),
		[]federation.Adapter[domain.EmailSignup]{pg.Signups(), mailer.Signups()},
		federation.WithLogger[domain.EmailSignup](log),
		federation.WithMetrics[domain.EmailSignup](metrics),
		federation.WithAdapterTimeout[domain.EmailSignup](cfg.AdapterTimeout))
	if err != nil {
		closeAll(ctx)
		return Stores{}, nil, err
	}

	return Stores{Registrations: regs, Contacts: cons, Signups: sigs}, closeAll, nil
}
