// Package notify relays payment proofs to the administrator.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/paybot/core/telegram/format"
)

// Status distinguishes a delivered admin notification from a failed one.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Result is the outcome of a notification attempt. Err is set when Status is failed.
type Result struct {
	Status Status
	Err    error
}

// Delivered reports whether the admin received the notification.
func (r Result) Delivered() bool { return r.Status == StatusDelivered }

// Failed builds a failed result.
func Failed(err error) Result { return Result{Status: StatusFailed, Err: err} }

// Notification carries what the admin needs to verify a payment manually.
type Notification struct {
	PaymentID   int64
	UserID      int64
	Username    string
	DisplayName string
	PlanName    string
	Amount      int64
	SubmittedAt time.Time
	// FileID references the proof photo already stored by Telegram.
	FileID string
}

// Notifier delivers a notification to the administrator.
type Notifier interface {
	Notify(ctx context.Context, n Notification) Result
}

// Text renders the Markdown (v1) admin message.
func Text(n Notification) string {
	handle := "N/A"
	if u := strings.TrimSpace(n.Username); u != "" {
		handle = "@" + format.EscapeV1(u)
	}
	name := strings.TrimSpace(n.DisplayName)
	if name == "" {
		name = "N/A"
	}

	var b strings.Builder
	b.WriteString("🆕 *NEW PAYMENT VERIFICATION REQUIRED*\n\n")
	fmt.Fprintf(&b, "👤 *User:* %s\n", handle)
	fmt.Fprintf(&b, "📛 *Name:* %s\n", format.EscapeV1(name))
	fmt.Fprintf(&b, "🆔 *User ID:* `%d`\n", n.UserID)
	fmt.Fprintf(&b, "💳 *Plan:* %s\n", format.EscapeV1(n.PlanName))
	fmt.Fprintf(&b, "💰 *Amount:* ₹%d\n", n.Amount)
	fmt.Fprintf(&b, "⏰ *Time:* %s\n", n.SubmittedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "🧾 *Payment ID:* `%d`\n\n", n.PaymentID)
	b.WriteString("⚠️ Please verify the UTR number in the screenshot below.")
	return b.String()
}

// Caption is attached to the forwarded proof photo.
func Caption(n Notification) string {
	return fmt.Sprintf("Payment proof from user %d (payment %d)", n.UserID, n.PaymentID)
}
