package tgbot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/paybot/bot/payments"
	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/core/telegram/format"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const pendingTimeLayout = "2006-01-02 15:04"

// Pending lists payments awaiting verification. An optional numeric argument sets the limit.
func (h *Handlers) Pending(c tele.Context) error {
	if h.pending == nil {
		return tghelpers.SendText(c, "Payment storage is not configured.")
	}
	limit := payments.DefaultListLimit
	if args := c.Args(); len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}
	list, err := h.pending.ListPending(tghelpers.BuildContext(c), limit)
	if err != nil {
		_ = tghelpers.SendText(c, "⚠️ Could not load pending payments.")
		return err
	}
	return tghelpers.SendMD(c, FormatPending(list, h.catalog))
}

// FormatPending renders the admin pending list as Markdown.
func FormatPending(list []payments.Payment, catalog *plans.Catalog) string {
	if len(list) == 0 {
		return "✅ No pending payments."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Pending payments* (%d)\n", len(list))
	for _, p := range list {
		name := p.PlanID
		if plan, err := catalog.Get(p.PlanID); err == nil {
			name = plan.Name
		}
		fmt.Fprintf(&b, "\n#%d • user `%d` • %s • ₹%d\n", p.ID, p.UserID, format.EscapeV1(name), p.Amount)
		fmt.Fprintf(&b, "   %s • UTR: %s\n",
			p.SubmittedAt.UTC().Format(pendingTimeLayout),
			format.EscapeV1(format.DerefString(p.UTR, "N/A")),
		)
	}
	return b.String()
}
