package tgbot

import (
	"context"
	"errors"

	"github.com/m3rciful/paybot/bot/conversation"
	"github.com/m3rciful/paybot/bot/payments"
	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/core/reporting"
	"github.com/m3rciful/paybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Engine is the conversation surface the handlers drive.
type Engine interface {
	Handle(ctx context.Context, u conversation.User, ev conversation.Event) (conversation.Outcome, error)
	InProgress(ctx context.Context, userID int64) bool
}

// PendingLister returns payments awaiting verification, newest first.
type PendingLister interface {
	ListPending(ctx context.Context, limit int) ([]payments.Payment, error)
}

// Handlers translates Telegram updates into conversation events.
type Handlers struct {
	engine  Engine
	pending PendingLister
	catalog *plans.Catalog
	report  func(ctx context.Context, err error, tags map[string]string)
}

// NewHandlers builds update handlers. pending may be nil, which disables /pending.
func NewHandlers(engine Engine, pending PendingLister, catalog *plans.Catalog) (*Handlers, error) {
	if engine == nil {
		return nil, errors.New("tgbot: conversation engine is required")
	}
	return &Handlers{engine: engine, pending: pending, catalog: catalog, report: reporting.Capture}, nil
}

// UserFrom extracts the acting user and reply chat.
func UserFrom(c tele.Context) (conversation.User, bool) {
	s := c.Sender()
	if s == nil {
		return conversation.User{}, false
	}
	u := conversation.User{
		ID:          s.ID,
		ChatID:      s.ID,
		Username:    s.Username,
		DisplayName: tghelpers.DisplayName(s),
	}
	if ch := c.Chat(); ch != nil {
		u.ChatID = ch.ID
	}
	return u, true
}

func private(c tele.Context) bool {
	ch := c.Chat()
	return ch == nil || ch.Type == tele.ChatPrivate
}

func (h *Handlers) dispatch(c tele.Context, ev conversation.Event) error {
	if !private(c) {
		return nil
	}
	u, ok := UserFrom(c)
	if !ok {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	_, err := h.engine.Handle(ctx, u, ev)
	return err
}

// Start greets the user with the plan menu.
func (h *Handlers) Start(c tele.Context) error {
	return h.dispatch(c, conversation.Event{Kind: conversation.EventStart})
}

// Cancel aborts the current dialogue.
func (h *Handlers) Cancel(c tele.Context) error {
	return h.dispatch(c, conversation.Event{Kind: conversation.EventCancel})
}

// PlanChosen handles a plan button; the callback payload carries the plan id.
func (h *Handlers) PlanChosen(c tele.Context) error {
	planID := callbacks.CallbackPayload(c)
	err := h.dispatch(c, conversation.Event{Kind: conversation.EventPlanChosen, PlanID: planID})
	if conversation.IsUnknownPlan(err) {
		// already logged by the engine; the button itself is answered here
		h.report(tghelpers.BuildContext(c), err, map[string]string{"trigger": string(conversation.EventPlanChosen)})
		return tghelpers.RespondCallback(c, "Unsupported action")
	}
	return err
}

// HowItWorks shows the payment instructions.
func (h *Handlers) HowItWorks(c tele.Context) error {
	return h.dispatch(c, conversation.Event{Kind: conversation.EventHowItWorks})
}

// BackToPlans returns from the instructions to the plan menu.
func (h *Handlers) BackToPlans(c tele.Context) error {
	return h.dispatch(c, conversation.Event{Kind: conversation.EventBackToPlan})
}

// PaymentDone asks for the payment screenshot.
func (h *Handlers) PaymentDone(c tele.Context) error {
	return h.dispatch(c, conversation.Event{Kind: conversation.EventPaid})
}

// ChangePlan goes back to the plan menu from the payment screen.
func (h *Handlers) ChangePlan(c tele.Context) error {
	return h.dispatch(c, conversation.Event{Kind: conversation.EventChangePlan})
}

// InProgress reports whether the sender has an active dialogue.
func (h *Handlers) InProgress(c tele.Context) bool {
	if !private(c) || c.Sender() == nil {
		return false
	}
	return h.engine.InProgress(tghelpers.BuildContext(c), c.Sender().ID)
}

// HandleMessage feeds free-form input to the dialogue: photos become proofs,
// everything else is rejected as non-image input.
func (h *Handlers) HandleMessage(c tele.Context) error {
	return h.dispatch(c, MessageEvent(c.Message()))
}

// MessageEvent classifies an incoming message.
func MessageEvent(m *tele.Message) conversation.Event {
	if m != nil && m.Photo != nil && m.Photo.FileID != "" {
		return conversation.Event{Kind: conversation.EventPhoto, FileID: m.Photo.FileID}
	}
	return conversation.Event{Kind: conversation.EventNonImage}
}
