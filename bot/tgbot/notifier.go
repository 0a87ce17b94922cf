package tgbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/paybot/bot/notify"
	"github.com/m3rciful/paybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

var _ notify.Notifier = (*AdminNotifier)(nil)

// AdminNotifier forwards payment proofs to the administrator chat.
type AdminNotifier struct {
	api     API
	adminID int64
}

// NewAdminNotifier builds a notifier for the given admin chat id.
func NewAdminNotifier(api API, adminID int64) *AdminNotifier {
	return &AdminNotifier{api: api, adminID: adminID}
}

// Notify sends the verification text followed by the proof photo.
// Both must reach the admin for the notification to count as delivered.
func (n *AdminNotifier) Notify(ctx context.Context, note notify.Notification) notify.Result {
	if n.adminID == 0 {
		return notify.Failed(fmt.Errorf("admin chat is not configured"))
	}
	to := tele.ChatID(n.adminID)
	if _, err := n.api.Send(to, notify.Text(note), &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
		return notify.Failed(fmt.Errorf("send admin text: %w", err))
	}
	if note.FileID != "" {
		photo := &tele.Photo{File: tele.File{FileID: note.FileID}, Caption: notify.Caption(note)}
		if _, err := n.api.Send(to, photo); err != nil {
			return notify.Failed(fmt.Errorf("send admin photo: %w", err))
		}
	}
	logger.Info(ctx, "notify", "admin.notify",
		slog.Int64("payment_id", note.PaymentID),
		slog.Int64("user_id", note.UserID),
		slog.String("notify", string(notify.StatusDelivered)),
	)
	return notify.Result{Status: notify.StatusDelivered}
}
