package telegram

import (
	"testing"
	"time"

	coreconfig "github.com/m3rciful/paybot/core/config"

	tele "gopkg.in/telebot.v4"
)

func TestPollerFromConfigWebhook(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeWebhook},
		Webhook:  coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.org/hook", SecretToken: "s3cret"},
	}
	wh, ok := PollerFromConfig(cfg).(*tele.Webhook)
	if !ok {
		t.Fatalf("poller type = %T", PollerFromConfig(cfg))
	}
	if wh.Listen != "0.0.0.0:8443" || wh.SecretToken != "s3cret" || wh.Endpoint.PublicURL != "https://bot.example.org/hook" {
		t.Fatalf("webhook = %+v", wh)
	}
}

func TestPollerFromConfigLongpoll(t *testing.T) {
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeLongpoll}}
	lp, ok := PollerFromConfig(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatal("expected long poller")
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v", lp.Timeout)
	}

	cfg.Telegram.LongPollTimeoutSeconds = 25
	if lp := PollerFromConfig(cfg).(*tele.LongPoller); lp.Timeout != 25*time.Second {
		t.Fatalf("timeout = %v", lp.Timeout)
	}
}
