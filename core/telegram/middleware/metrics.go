package middleware

import (
	"time"

	"github.com/m3rciful/paybot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

const statsKey = "paybot.send_stats"

// sendStats counts replies made through the update context.
type sendStats struct {
	messages int
	keyboard bool
}

// countingContext records successful sends on the update's sendStats.
type countingContext struct {
	tele.Context
	stats *sendStats
}

func (cc countingContext) record(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	cc.stats.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			cc.stats.keyboard = cc.stats.keyboard || (v != nil && v.ReplyMarkup != nil)
		case *tele.ReplyMarkup:
			cc.stats.keyboard = cc.stats.keyboard || v != nil
		}
	}
	return nil
}

func (cc countingContext) Send(what interface{}, opts ...interface{}) error {
	return cc.record(cc.Context.Send(what, opts...), opts)
}

func (cc countingContext) Reply(what interface{}, opts ...interface{}) error {
	return cc.record(cc.Context.Reply(what, opts...), opts)
}

func (cc countingContext) Edit(what interface{}, opts ...interface{}) error {
	return cc.record(cc.Context.Edit(what, opts...), opts)
}

func (cc countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return cc.record(cc.Context.EditOrSend(what, opts...), opts)
}

func (cc countingContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return cc.record(cc.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware counts replies per update and observes the
// update's kind, result and latency in Prometheus.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		stats := &sendStats{}
		c.Set(statsKey, stats)
		err := next(countingContext{Context: c, stats: stats})
		metrics.ObserveUpdate(UpdateKind(c.Update()), err == nil, time.Since(start).Milliseconds())
		return err
	}
}

// UpdateKind classifies an update for metrics and rate limiting.
func UpdateKind(upd tele.Update) string {
	if upd.Callback != nil {
		return "callback"
	}
	if upd.Query != nil {
		return "inline_query"
	}
	m := upd.Message
	switch {
	case m == nil:
		return "other"
	case m.Photo != nil:
		return "photo"
	case m.Document != nil:
		return "document"
	default:
		return "message"
	}
}

// GetCounters returns how many replies the current update produced and
// whether any carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	s, ok := c.Get(statsKey).(*sendStats)
	if !ok {
		return 0, false
	}
	return s.messages, s.keyboard
}
