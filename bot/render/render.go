// Package render builds the Markdown prompts shown to users.
package render

import (
	"fmt"
	"strings"

	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/bot/qr"
	"github.com/m3rciful/paybot/bot/upi"
)

// Callback uniques carried by inline buttons.
const (
	CallbackPlan        = "plan"
	CallbackHowItWorks  = "how_it_works"
	CallbackBackToPlans = "back_to_plans"
	CallbackPaymentDone = "payment_done"
	CallbackChangePlan  = "change_plan"
)

// Button is an inline keyboard button; Data is the callback payload.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Prompt is a bot message. When Photo is set, Text is sent as its caption.
type Prompt struct {
	Text    string
	Photo   []byte
	Buttons [][]Button
}

// Renderer turns conversation steps into prompts.
type Renderer struct {
	Catalog   *plans.Catalog
	UPIID     string
	PayeeName string
	QR        qr.Encoder
}

// PlanMenu lists every plan plus the "How It Works" button.
// The welcome variant is used for /start, the short one when returning to the menu.
func (r *Renderer) PlanMenu(welcome bool) Prompt {
	var rows [][]Button
	for _, p := range r.Catalog.All() {
		rows = append(rows, []Button{{Text: p.ButtonLabel(), Unique: CallbackPlan, Data: p.ID}})
	}
	rows = append(rows, []Button{{Text: "ℹ️ How It Works", Unique: CallbackHowItWorks}})

	text := "🎟️ *Premium Membership Subscription*\n\nSelect your plan:"
	if welcome {
		text = "🎟️ *Premium Membership Subscription*\n\n" +
			"Select your plan to proceed:\n\n" +
			"✅ Access to exclusive content\n" +
			"✅ Priority support\n" +
			"✅ All premium groups\n" +
			"✅ Regular updates\n\n" +
			"_Choose a plan below:_"
	}
	return Prompt{Text: text, Buttons: rows}
}

// HowItWorks explains the manual verification flow.
func (r *Renderer) HowItWorks() Prompt {
	return Prompt{
		Text: "📋 *How It Works:*\n\n" +
			"1️⃣ *Select Plan* - Choose your membership duration\n" +
			"2️⃣ *Make Payment* - Scan QR code with any UPI app\n" +
			"3️⃣ *Upload Proof* - Send payment screenshot with UTR number\n" +
			"4️⃣ *Verification* - We verify your payment (20 minutes)\n" +
			"5️⃣ *Get Access* - Added to premium groups after approval\n\n" +
			"⏰ *Verification Time:* 20 minutes maximum\n" +
			"🔄 *Refund:* Only if verification fails\n\n" +
			"_Click below to continue:_",
		Buttons: [][]Button{{{Text: "🔙 Back to Plans", Unique: CallbackBackToPlans}}},
	}
}

// PaymentLink returns the UPI deep link for a plan.
func (r *Renderer) PaymentLink(p plans.Plan) (string, error) {
	return upi.Link(upi.Request{
		PayeeAddress: r.UPIID,
		PayeeName:    r.PayeeName,
		Amount:       p.Price,
		Note:         p.Name + " Subscription",
	})
}

// Payment renders the QR code with payment instructions for a plan.
func (r *Renderer) Payment(p plans.Plan) (Prompt, error) {
	link, err := r.PaymentLink(p)
	if err != nil {
		return Prompt{}, fmt.Errorf("render: payment link: %w", err)
	}
	if r.QR == nil {
		return Prompt{}, fmt.Errorf("render: no QR encoder configured")
	}
	img, err := r.QR.PNG(link)
	if err != nil {
		return Prompt{}, fmt.Errorf("render: qr: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s - ₹%d*\n\n", p.Name, p.Price)
	b.WriteString("📋 *Plan Details:*\n")
	b.WriteString(p.Description + "\n\n")
	b.WriteString("💳 *Payment Instructions:*\n")
	b.WriteString("1. Scan QR code with any UPI app\n")
	fmt.Fprintf(&b, "2. Pay ₹%d to:\n   `%s`\n", p.Price, r.UPIID)
	b.WriteString("3. Click 'I Have Paid' below\n")
	b.WriteString("4. Upload payment screenshot with UTR\n\n")
	b.WriteString("⚠️ *Important:* Keep payment screenshot with UTR number ready!")

	return Prompt{
		Text:  b.String(),
		Photo: img,
		Buttons: [][]Button{
			{{Text: "✅ I Have Paid", Unique: CallbackPaymentDone}},
			{{Text: "🔙 Change Plan", Unique: CallbackChangePlan}},
		},
	}, nil
}

// UploadPrompt asks for the payment screenshot.
func (r *Renderer) UploadPrompt() Prompt {
	return Prompt{Text: "📤 *Upload Payment Proof*\n\n" +
		"Please upload/forward the payment screenshot *with UTR number visible*.\n\n" +
		"⚠️ *Requirements:*\n" +
		"• Screenshot must show UPI transaction\n" +
		"• UTR number must be visible\n" +
		"• Amount should match selected plan\n" +
		"• Timestamp should be recent\n\n" +
		"_Send the screenshot now:_"}
}

// ImageRequired re-prompts when something other than a photo arrives.
func (r *Renderer) ImageRequired() Prompt {
	return Prompt{Text: "Please send a screenshot image."}
}

// Received confirms the proof is queued for manual verification.
func (r *Renderer) Received() Prompt {
	return Prompt{Text: "✅ *Payment Received!*\n\n" +
		"📋 *Your Membership is Under Verification*\n" +
		"⏰ *Time:* Up to 20 minutes\n\n" +
		"🔍 *What happens next:*\n" +
		"1. We verify your payment\n" +
		"2. Check UTR number\n" +
		"3. Confirm amount\n" +
		"4. Add you to premium groups\n\n" +
		"📬 You will receive a confirmation message here.\n" +
		"🔄 No further action required from your side."}
}

// SubmitFailed tells the user the proof could not be recorded and may be resent.
func (r *Renderer) SubmitFailed() Prompt {
	return Prompt{Text: "⚠️ We could not record your payment proof. Please send the screenshot again."}
}

// SessionExpired is shown when a proof arrives but the plan selection is gone.
func (r *Renderer) SessionExpired() Prompt {
	menu := r.PlanMenu(false)
	menu.Text = "⌛ *Your plan selection has expired.*\n\nPlease choose your plan again before uploading the payment proof.\n\n" + menu.Text
	return menu
}

// Cancelled confirms the conversation was abandoned.
func (r *Renderer) Cancelled() Prompt {
	return Prompt{Text: "❌ Process cancelled. Type /start to begin again."}
}
