package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/paybot/bot/conversation"
	"github.com/m3rciful/paybot/bot/payments"
	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/bot/qr"
	"github.com/m3rciful/paybot/bot/render"
	"github.com/m3rciful/paybot/bot/session"
	"github.com/m3rciful/paybot/bot/tgbot"
	"github.com/m3rciful/paybot/core/bootstrap"
	coreconfig "github.com/m3rciful/paybot/core/config"
	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/metrics"
	"github.com/m3rciful/paybot/core/reporting"
	coretelegram "github.com/m3rciful/paybot/core/telegram"
	"github.com/m3rciful/paybot/core/telegram/router"
	"github.com/m3rciful/paybot/core/telegram/state"
)

// App holds the long-lived services of a running bot.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	catalog  *plans.Catalog
	renderer *render.Renderer
	payments *payments.Service
	tracker  state.Tracker
	sessions session.Store
}

// Bootstrap opens infrastructure and builds the services.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:    &cfg.Config,
		Database:  cfg.Database,
		WaitForDB: 30 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	metrics.MustRegister()

	a := New(cfg, infra, payments.NewPostgresRepository(infra.DB))
	logger.Info(ctx, "app", "bootstrap",
		slog.String("sessions", cfg.Sessions.Backend),
		slog.Int("plans", len(a.catalog.All())),
		slog.Bool("sentry", reporting.Enabled()),
	)
	return a, nil
}

// New assembles services over already opened infrastructure.
// Sessions and conversation state live in Redis when infra carries a client, in memory otherwise.
func New(cfg *Config, infra *bootstrap.Result, repo payments.Repository) *App {
	catalog := plans.Default()
	a := &App{
		cfg:     cfg,
		infra:   infra,
		catalog: catalog,
		renderer: &render.Renderer{
			Catalog:   catalog,
			UPIID:     cfg.Payment.UPIID,
			PayeeName: cfg.Payment.PayeeName,
			QR:        qr.PNGEncoder{ModuleSize: cfg.Payment.QRModuleSize},
		},
		payments: payments.NewService(repo, catalog),
	}
	if infra != nil && infra.Redis != nil {
		a.sessions = session.NewRedisStore(infra.Redis, cfg.Sessions.TTL)
		a.tracker = state.NewRedisTracker(infra.Redis, cfg.Sessions.TTL)
	} else {
		a.sessions = session.NewMemoryStore()
		a.tracker = state.NewMemoryTracker()
	}
	return a
}

// CoreConfig exposes the runtime configuration.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg.CoreConfig()
}

// Engine builds the conversation engine bound to a Telegram API.
func (a *App) Engine(api tgbot.API, disp conversation.Dispatcher) (*conversation.Engine, error) {
	deps := conversation.Deps{
		Catalog:  a.catalog,
		Renderer: a.renderer,
		Tracker:  a.tracker,
		Sessions: a.sessions,
		Payments: a.payments,
		Notifier: tgbot.NewAdminNotifier(api, a.cfg.Telegram.AdminID),
		Prompter: tgbot.NewPromptSender(api),
	}
	if disp != nil {
		deps.Dispatcher = disp
	}
	return conversation.NewEngine(deps)
}

// Routes builds every Telegram handler for the bot.
func (a *App) Routes(reg *coretelegram.Registry, api tgbot.API, disp conversation.Dispatcher) ([]coretelegram.Route, error) {
	engine, err := a.Engine(api, disp)
	if err != nil {
		return nil, err
	}
	h, err := tgbot.NewHandlers(engine, a.payments, a.catalog)
	if err != nil {
		return nil, err
	}
	if err := h.Register(reg); err != nil {
		return nil, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: a.cfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(h, reg, router.TextOptions{})...)
	return routes, nil
}

// TelegramRunOptions describes how the core runtime should run this bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, nil),
		BuildRoutes: func(_ context.Context, rt coretelegram.Runtime) ([]coretelegram.Route, error) {
			var disp conversation.Dispatcher
			if rt.Dispatcher != nil {
				disp = rt.Dispatcher
			}
			return a.Routes(rt.Registry, rt.Bot, disp)
		},
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			go func() {
				if err := metrics.Serve(ctx, a.cfg.Metrics.Listen); err != nil {
					logger.Error(ctx, "metrics", "metrics.serve", slog.String("err", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			reporting.Flush(2 * time.Second)
			if err := a.Close(); err != nil {
				logger.Warn(ctx, "app", "close", slog.String("err", err.Error()))
			}
			return nil
		},
	}, nil
}

// Close releases database and Redis connections.
func (a *App) Close() error {
	return a.infra.Close()
}
