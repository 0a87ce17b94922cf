package telegram

import (
	"net"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/paybot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// longPollTimeout is the getUpdates timeout, falling back to 10s.
func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if cfg.Telegram.LongPollTimeoutSeconds > 0 {
		return time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	}
	return defaultLongPollTimeout
}

// PollerFromConfig returns a webhook listener in webhook mode and a long poller otherwise.
// cfg is expected to be normalized.
func PollerFromConfig(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:      net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port)),
			SecretToken: cfg.Webhook.SecretToken,
			Endpoint:    &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	return &tele.LongPoller{Timeout: longPollTimeout(cfg)}
}
