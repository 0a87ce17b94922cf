package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/paybot/core/config"
	coredatabase "github.com/m3rciful/paybot/core/database"
	"github.com/m3rciful/paybot/core/logger"
	coreredis "github.com/m3rciful/paybot/core/redis"
	"github.com/m3rciful/paybot/core/reporting"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// WaitForDB, when positive, polls the database before connecting.
	WaitForDB time.Duration

	LoggerInit    func(*coreconfig.Config) error
	ReportingInit func(coreconfig.SentryConfig, string) error
	Wait          func(ctx context.Context, dsn string, timeout time.Duration) error
	Connect       func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate       func(context.Context, coredatabase.Config) error
	ConnectRedis  func(context.Context, coreconfig.RedisConfig) (coreredis.KV, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
	// Redis is set only when sessions are stored in Redis.
	Redis coreredis.KV
}

// Close releases connections opened by Run.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run initializes logging and error reporting, connects to the database,
// applies migrations and, for the redis session backend, dials Redis.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	reportingInit := opts.ReportingInit
	if reportingInit == nil {
		reportingInit = reporting.Init
	}
	if err := reportingInit(cfg.Sentry, cfg.Logging.Profile); err != nil {
		return nil, fmt.Errorf("bootstrap: error reporting init failed: %w", err)
	}

	if err := opts.Database.Normalize(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	if opts.WaitForDB > 0 {
		wait := opts.Wait
		if wait == nil {
			wait = coredatabase.WaitForPostgres
		}
		if err := wait(ctx, opts.Database.URLString(), opts.WaitForDB); err != nil {
			return nil, fmt.Errorf("bootstrap: database not ready: %w", err)
		}
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	res := &Result{DB: db}
	if cfg.Sessions.Backend == coreconfig.SessionsRedis {
		dial := opts.ConnectRedis
		if dial == nil {
			dial = func(ctx context.Context, rc coreconfig.RedisConfig) (coreredis.KV, error) {
				return coreredis.Connect(ctx, rc)
			}
		}
		kv, err := dial(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
		res.Redis = kv
	}
	return res, nil
}
