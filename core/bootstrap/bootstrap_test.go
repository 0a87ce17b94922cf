package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/paybot/core/config"
	coredatabase "github.com/m3rciful/paybot/core/database"
	coreredis "github.com/m3rciful/paybot/core/redis"
)

type stubKV struct{ closed bool }

func (s *stubKV) Get(context.Context, string) (string, error)                   { return "", coreredis.ErrNil }
func (s *stubKV) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (s *stubKV) Del(context.Context, ...string) error                          { return nil }
func (s *stubKV) Ping(context.Context) error                                    { return nil }
func (s *stubKV) Close() error                                                  { s.closed = true; return nil }

func lazyDB(t *testing.T) *sqlx.DB {
	t.Helper()
	raw, err := sql.Open("postgres", "postgres://paybot@127.0.0.1:1/paybot?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	return sqlx.NewDb(raw, "postgres")
}

func baseOptions(t *testing.T) Options {
	return Options{
		Config:        &coreconfig.Config{Sessions: coreconfig.SessionsConfig{Backend: coreconfig.SessionsMemory}},
		Database:      coredatabase.Config{URL: "postgres://paybot@127.0.0.1:1/paybot?sslmode=disable"},
		LoggerInit:    func(*coreconfig.Config) error { return nil },
		ReportingInit: func(coreconfig.SentryConfig, string) error { return nil },
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return lazyDB(t), nil
		},
		Migrate: func(context.Context, coredatabase.Config) error { return nil },
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunMemorySessions(t *testing.T) {
	res, err := Run(context.Background(), baseOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if res.DB == nil || res.Redis != nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunRedisSessions(t *testing.T) {
	opts := baseOptions(t)
	opts.Config.Sessions.Backend = coreconfig.SessionsRedis
	kv := &stubKV{}
	opts.ConnectRedis = func(context.Context, coreconfig.RedisConfig) (coreredis.KV, error) { return kv, nil }

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Redis != kv {
		t.Fatal("redis not wired")
	}
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}
	if !kv.closed {
		t.Fatal("redis not closed")
	}
}

func TestRunStopsOnFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := map[string]func(*Options){
		"logger":    func(o *Options) { o.LoggerInit = func(*coreconfig.Config) error { return boom } },
		"reporting": func(o *Options) { o.ReportingInit = func(coreconfig.SentryConfig, string) error { return boom } },
		"connect": func(o *Options) {
			o.Connect = func(context.Context, coredatabase.Config) (*sqlx.DB, error) { return nil, boom }
		},
		"migrate": func(o *Options) { o.Migrate = func(context.Context, coredatabase.Config) error { return boom } },
		"wait": func(o *Options) {
			o.WaitForDB = time.Second
			o.Wait = func(context.Context, string, time.Duration) error { return boom }
		},
		"redis": func(o *Options) {
			o.Config.Sessions.Backend = coreconfig.SessionsRedis
			o.ConnectRedis = func(context.Context, coreconfig.RedisConfig) (coreredis.KV, error) { return nil, boom }
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			opts := baseOptions(t)
			mutate(&opts)
			if _, err := Run(context.Background(), opts); !errors.Is(err, boom) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestRunRejectsMissingDatabaseTarget(t *testing.T) {
	opts := baseOptions(t)
	opts.Database = coredatabase.Config{}
	if _, err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected error")
	}
}
