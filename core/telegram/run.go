package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/paybot/core/config"
	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/reporting"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"
	tgsender "github.com/m3rciful/paybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint (command, tele.OnText, ...).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions configures RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher is created from DispatcherOptions when nil and closed on exit.
	Dispatcher        *tgsender.Dispatcher
	DispatcherOptions tgsender.Options

	Middlewares []Middleware
	Routes      []Route
	// BuildRoutes is called after the bot is constructed.
	BuildRoutes func(ctx context.Context, rt Runtime) ([]Route, error)

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is what lifecycle hooks and route builders get to work with.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot, installs middlewares and routes, and serves
// updates until ctx is cancelled.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	bot, err := newBot(opts.Config)
	if err != nil {
		return err
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(opts.Dispatcher)
	defer func() {
		opts.Dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	rt := Runtime{Bot: bot, Dispatcher: opts.Dispatcher, Registry: opts.Registry}
	if err := wire(ctx, bot, rt, opts); err != nil {
		return err
	}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	serveErr := serve(ctx, bot)
	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	return serveErr
}

func newBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	started := time.Now()
	poller := PollerFromConfig(cfg)
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(),
		OnError: reportHandlerError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	ctx := logger.Background()
	attrs := []slog.Attr{slog.Duration("duration", logger.RoundMS(time.Since(started)))}
	if wh, ok := poller.(*tele.Webhook); ok {
		logger.Info(ctx, "tg", "mode", append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Bool("secret_token", wh.SecretToken != ""),
		)...)
		return bot, nil
	}

	logger.Info(ctx, "tg", "mode", append(attrs,
		slog.String("mode", coreconfig.RunModeLongpoll),
		slog.Duration("timeout", longPollTimeout(cfg)),
	)...)
	// A webhook left over from a previous deployment blocks getUpdates.
	if err := bot.RemoveWebhook(false); err != nil {
		logger.Warn(ctx, "tg", "webhook.remove", slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	return bot, nil
}

func reportHandlerError(err error, c tele.Context) {
	ctx := logger.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "handler.error", slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	reporting.Capture(ctx, err, map[string]string{"source": "telebot"})
}

func wire(ctx context.Context, bot *tele.Bot, rt Runtime, opts RunOptions) error {
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	routes := opts.Routes
	if opts.BuildRoutes != nil {
		built, err := opts.BuildRoutes(ctx, rt)
		if err != nil {
			return fmt.Errorf("telegram: build routes: %w", err)
		}
		routes = append(routes, built...)
	}
	for _, r := range routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	PublishCommands(bot, rt.Registry)
	logger.Info(ctx, "tg.wire", "complete",
		slog.Int("routes", len(routes)),
		slog.Int("middlewares", len(opts.Middlewares)),
	)
	return nil
}

// serve blocks until ctx is done or the poller gives up.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		bot.Stop()
		<-done
	}
	if err := ctx.Err(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
