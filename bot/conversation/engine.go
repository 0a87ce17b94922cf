package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/paybot/bot/notify"
	"github.com/m3rciful/paybot/bot/payments"
	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/bot/render"
	"github.com/m3rciful/paybot/bot/session"
	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/metrics"
	"github.com/m3rciful/paybot/core/reporting"
	"github.com/m3rciful/paybot/core/telegram/state"
)

// ErrNoSender is returned by NewEngine when no Prompter is configured.
var ErrNoSender = errors.New("conversation: prompt sender is required")

// Prompter sends and deletes bot messages in a private chat.
type Prompter interface {
	SendPrompt(ctx context.Context, chatID int64, p render.Prompt) (int, error)
	DeletePrompt(ctx context.Context, chatID int64, messageID int) error
}

// Dispatcher runs outbound calls asynchronously. *sender.Dispatcher satisfies it.
type Dispatcher interface {
	Enqueue(ctx context.Context, action, endpoint string, run func() error) error
}

// PaymentRecorder persists payment proofs.
type PaymentRecorder interface {
	Submit(ctx context.Context, s payments.Submission) (payments.Payment, error)
}

// User identifies who triggered an event and where to answer.
type User struct {
	ID          int64
	ChatID      int64
	Username    string
	DisplayName string
}

// Deps wires the engine. Dispatcher, Clock and Report are optional.
type Deps struct {
	Catalog    *plans.Catalog
	Renderer   *render.Renderer
	Tracker    state.Tracker
	Sessions   session.Store
	Payments   PaymentRecorder
	Notifier   notify.Notifier
	Prompter   Prompter
	Dispatcher Dispatcher
	Clock      func() time.Time

	// Report receives failures the engine absorbs. Defaults to reporting.Capture.
	Report func(ctx context.Context, err error, tags map[string]string)
}

// Outcome reports what Handle did.
type Outcome struct {
	Transition
	// Payment is set once a proof has been recorded.
	Payment *payments.Payment
	// Notify is the admin notification result, zero when none was attempted.
	Notify notify.Result
	// SubmitErr is set when the proof could not be recorded; the user was told to resend.
	SubmitErr error
}

// Engine applies transitions and executes their effects.
type Engine struct {
	machine Machine
	deps    Deps
	now     func() time.Time
}

// NewEngine validates deps and builds an Engine.
func NewEngine(d Deps) (*Engine, error) {
	if d.Prompter == nil {
		return nil, ErrNoSender
	}
	switch {
	case d.Catalog == nil:
		return nil, fmt.Errorf("conversation: catalog is required")
	case d.Renderer == nil:
		return nil, fmt.Errorf("conversation: renderer is required")
	case d.Tracker == nil:
		return nil, fmt.Errorf("conversation: state tracker is required")
	case d.Sessions == nil:
		return nil, fmt.Errorf("conversation: session store is required")
	case d.Payments == nil:
		return nil, fmt.Errorf("conversation: payment recorder is required")
	case d.Notifier == nil:
		return nil, fmt.Errorf("conversation: notifier is required")
	}
	now := d.Clock
	if now == nil {
		now = time.Now
	}
	if d.Report == nil {
		d.Report = reporting.Capture
	}
	return &Engine{machine: NewMachine(d.Catalog), deps: d, now: now}, nil
}

// InProgress reports whether the user is in the middle of a dialogue.
func (e *Engine) InProgress(ctx context.Context, userID int64) bool {
	conv, err := e.deps.Tracker.Get(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "conversation", "state.get",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return false
	}
	return InProgress(conv.State)
}

// Handle applies ev for u and executes the resulting effects in order.
// Returned errors are logged here but left to the caller to report.
func (e *Engine) Handle(ctx context.Context, u User, ev Event) (Outcome, error) {
	conv, err := e.deps.Tracker.Get(ctx, u.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load conversation: %w", err)
	}

	snap := Snapshot{State: conv.State}
	if ev.Kind == EventPhoto {
		s, ok, err := e.deps.Sessions.Get(ctx, u.ID)
		if err != nil {
			return Outcome{}, fmt.Errorf("load session: %w", err)
		}
		if ok {
			snap.Session = &s
		}
	}

	tr, err := e.machine.Next(snap, ev)
	if err != nil {
		logger.Error(ctx, "conversation", "transition.reject",
			slog.String("from_state", string(tr.From)),
			slog.String("trigger", string(ev.Kind)),
			slog.String("plan_id", ev.PlanID),
			slog.String("err", err.Error()),
		)
		return Outcome{Transition: tr}, err
	}

	out := Outcome{Transition: tr}
	if tr.Skipped {
		metrics.ObserveTransition(string(tr.From), string(ev.Kind), string(tr.To))
		logger.Debug(ctx, "conversation", "transition.skip",
			slog.String("from_state", string(tr.From)),
			slog.String("trigger", string(ev.Kind)),
		)
		return out, nil
	}

	if err := e.execute(ctx, u, &conv, &out); err != nil {
		logger.Error(ctx, "conversation", "transition.fail",
			slog.String("from_state", string(tr.From)),
			slog.String("to_state", string(tr.To)),
			slog.String("trigger", string(ev.Kind)),
			slog.String("err", err.Error()),
		)
		return out, err
	}

	conv.State = out.To
	conv.UpdatedAt = e.now().UTC()
	if err := e.deps.Tracker.Set(ctx, u.ID, conv); err != nil {
		return out, fmt.Errorf("save conversation: %w", err)
	}

	metrics.ObserveTransition(string(out.From), string(ev.Kind), string(out.To))
	logger.Info(ctx, "conversation", "transition",
		slog.Int64("user_id", u.ID),
		slog.String("from_state", string(out.From)),
		slog.String("to_state", string(out.To)),
		slog.String("trigger", string(ev.Kind)),
	)
	return out, nil
}

func (e *Engine) execute(ctx context.Context, u User, conv *state.Conversation, out *Outcome) error {
	r := e.deps.Renderer
	// Once stored data has changed, message failures no longer abort the
	// transition: the new state must be saved with it.
	committed := false
	show := func(err error) error {
		if err == nil || !committed {
			return err
		}
		logger.Warn(ctx, "conversation", "render.fail",
			slog.Int64("user_id", u.ID),
			slog.String("to_state", string(out.To)),
			slog.String("err", err.Error()),
		)
		return nil
	}

	for _, eff := range out.Effects {
		switch eff := eff.(type) {
		case RenderPlanMenu:
			if err := show(e.replace(ctx, u, conv, r.PlanMenu(eff.Welcome))); err != nil {
				return err
			}
		case RenderHowItWorks:
			if err := show(e.replace(ctx, u, conv, r.HowItWorks())); err != nil {
				return err
			}
		case PutSession:
			s := session.Session{
				UserID:      u.ID,
				PlanID:      eff.Plan.ID,
				SelectedAt:  e.now().UTC(),
				Username:    u.Username,
				DisplayName: u.DisplayName,
			}
			if err := e.deps.Sessions.Put(ctx, s); err != nil {
				return fmt.Errorf("put session: %w", err)
			}
			committed = true
			metrics.IncPlanSelection(eff.Plan.ID)
		case DeleteSession:
			if err := e.deps.Sessions.Delete(ctx, u.ID); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			committed = true
		case RenderPayment:
			p, err := r.Payment(eff.Plan)
			if err == nil {
				err = e.replace(ctx, u, conv, p)
			}
			if err := show(err); err != nil {
				return err
			}
		case RenderUploadPrompt:
			if err := show(e.replace(ctx, u, conv, r.UploadPrompt())); err != nil {
				return err
			}
		case SubmitPayment:
			if !e.submit(ctx, u, eff, out) {
				// the upload prompt stays live so the user can resend
				out.To = UploadScreenshot
				return e.notice(ctx, u, r.SubmitFailed())
			}
			committed = true
		case RenderReceived:
			if err := show(e.replaceFinal(ctx, u, conv, r.Received())); err != nil {
				return err
			}
		case RenderImageRequired:
			if err := show(e.notice(ctx, u, r.ImageRequired())); err != nil {
				return err
			}
		case RenderSessionExpired:
			if err := show(e.replace(ctx, u, conv, r.SessionExpired())); err != nil {
				return err
			}
		case RenderCancelled:
			if err := show(e.replaceFinal(ctx, u, conv, r.Cancelled())); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unhandled effect %T", eff)
		}
	}
	return nil
}

// submit records the proof and notifies the admin. It reports false when nothing was recorded.
func (e *Engine) submit(ctx context.Context, u User, eff SubmitPayment, out *Outcome) bool {
	at := e.now().UTC()
	p, err := e.deps.Payments.Submit(ctx, payments.Submission{
		UserID:        u.ID,
		Username:      u.Username,
		PlanID:        eff.Plan.ID,
		Amount:        eff.Plan.Price,
		ScreenshotRef: eff.FileID,
		SubmittedAt:   at,
	})
	if err != nil {
		out.SubmitErr = err
		e.deps.Report(ctx, err, map[string]string{"stage": "payment.submit"})
		return false
	}
	out.Payment = &p

	res := e.deps.Notifier.Notify(ctx, notify.Notification{
		PaymentID:   p.ID,
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PlanName:    eff.Plan.Name,
		Amount:      p.Amount,
		SubmittedAt: p.SubmittedAt,
		FileID:      eff.FileID,
	})
	out.Notify = res
	metrics.IncAdminNotification(string(res.Status))
	if !res.Delivered() {
		err := res.Err
		if err == nil {
			err = errors.New("admin notification failed")
		}
		logger.Error(ctx, "notify", "admin.notify",
			slog.Int64("payment_id", p.ID),
			slog.Int64("user_id", u.ID),
			slog.String("notify", string(res.Status)),
			slog.String("err", err.Error()),
		)
		e.deps.Report(ctx, err, map[string]string{
			"stage":      "admin.notify",
			"payment_id": strconv.FormatInt(p.ID, 10),
		})
	}
	return true
}

// replace deletes the live prompt and sends p as the new one.
func (e *Engine) replace(ctx context.Context, u User, conv *state.Conversation, p render.Prompt) error {
	e.dropPrompt(ctx, u.ChatID, conv.LastPromptID)
	conv.LastPromptID = 0
	id, err := e.deps.Prompter.SendPrompt(ctx, u.ChatID, p)
	if err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}
	conv.LastPromptID = id
	return nil
}

// replaceFinal deletes the live prompt and sends p without tracking it, so
// the closing message survives the next dialogue.
func (e *Engine) replaceFinal(ctx context.Context, u User, conv *state.Conversation, p render.Prompt) error {
	e.dropPrompt(ctx, u.ChatID, conv.LastPromptID)
	conv.LastPromptID = 0
	if _, err := e.deps.Prompter.SendPrompt(ctx, u.ChatID, p); err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}
	return nil
}

// notice sends p and leaves the live prompt in place.
func (e *Engine) notice(ctx context.Context, u User, p render.Prompt) error {
	if _, err := e.deps.Prompter.SendPrompt(ctx, u.ChatID, p); err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	return nil
}

// dropPrompt deletes a previous prompt best-effort. Failures are logged and counted only.
func (e *Engine) dropPrompt(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	run := func() error {
		if err := e.deps.Prompter.DeletePrompt(ctx, chatID, messageID); err != nil {
			metrics.IncPromptDeleteFailure()
			logger.Debug(ctx, "conversation", "prompt.delete",
				slog.Int64("chat_id", chatID),
				slog.Int("message_id", messageID),
				slog.String("err", err.Error()),
			)
		}
		return nil
	}
	if e.deps.Dispatcher == nil {
		_ = run()
		return
	}
	if err := e.deps.Dispatcher.Enqueue(ctx, "delete.prompt", "deleteMessage", run); err != nil {
		_ = run()
	}
}
