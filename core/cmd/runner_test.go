package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/paybot/core/config"
	coretelegram "github.com/m3rciful/paybot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct {
	opts coretelegram.RunOptions
}

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestConfigPath(t *testing.T) {
	t.Setenv("PAYBOT_CONFIG", "")
	if _, err := ConfigPath("PAYBOT_CONFIG", ""); err == nil {
		t.Fatal("expected error without path")
	}
	if p, _ := ConfigPath("PAYBOT_CONFIG", "config.yaml"); p != "config.yaml" {
		t.Fatalf("fallback = %q", p)
	}
	t.Setenv("PAYBOT_CONFIG", "/etc/paybot.yaml")
	if p, _ := ConfigPath("PAYBOT_CONFIG", "config.yaml"); p != "/etc/paybot.yaml" {
		t.Fatalf("env path = %q", p)
	}
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	var stopped bool
	var got coretelegram.RunOptions
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				OnStop: func(context.Context, coretelegram.Runtime) error { stopped = true; return nil },
			}}, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			got = opts
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.OnStart == nil || !stopped {
		t.Fatal("hooks not wrapped")
	}
}

func TestRunPropagatesBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
