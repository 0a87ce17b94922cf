// Package conversation drives the plan selection and payment proof dialogue.
package conversation

import (
	"errors"
	"fmt"

	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/bot/session"
	"github.com/m3rciful/paybot/core/telegram/state"
)

// Conversation states. Idle, Completed and Cancelled mean no dialogue is in progress.
const (
	Idle                = state.StateIdle
	SelectPlan          = state.State("select_plan")
	PaymentConfirmation = state.State("payment_confirmation")
	UploadScreenshot    = state.State("upload_screenshot")
	Completed           = state.State("completed")
	Cancelled           = state.State("cancelled")
)

// InProgress reports whether s expects further user input.
func InProgress(s state.State) bool {
	switch s {
	case SelectPlan, PaymentConfirmation, UploadScreenshot:
		return true
	}
	return false
}

// Kind names a user action.
type Kind string

const (
	EventStart      Kind = "start"
	EventPlanChosen Kind = "plan_chosen"
	EventHowItWorks Kind = "how_it_works"
	EventBackToPlan Kind = "back_to_plans"
	EventPaid       Kind = "paid"
	EventChangePlan Kind = "change_plan"
	EventPhoto      Kind = "photo"
	EventNonImage   Kind = "non_image"
	EventCancel     Kind = "cancel"
)

// Event is a user action. PlanID is set for EventPlanChosen, FileID for EventPhoto.
type Event struct {
	Kind   Kind
	PlanID string
	FileID string
}

// Effect is an action the engine performs for a transition.
type Effect interface{ isEffect() }

type (
	// RenderPlanMenu shows the plan list; Welcome selects the full /start copy.
	RenderPlanMenu struct{ Welcome bool }
	// RenderHowItWorks shows the help text.
	RenderHowItWorks struct{}
	// PutSession records the user's plan selection, replacing any previous one.
	PutSession struct{ Plan plans.Plan }
	// DeleteSession drops the user's plan selection.
	DeleteSession struct{}
	// RenderPayment shows the QR code and payment instructions.
	RenderPayment struct{ Plan plans.Plan }
	// RenderUploadPrompt asks for the payment screenshot.
	RenderUploadPrompt struct{}
	// SubmitPayment persists the proof and notifies the administrator.
	SubmitPayment struct {
		Plan   plans.Plan
		FileID string
	}
	// RenderReceived confirms the proof is queued for verification.
	RenderReceived struct{}
	// RenderImageRequired re-prompts for an image without replacing the live prompt.
	RenderImageRequired struct{}
	// RenderSessionExpired tells the user to pick a plan again.
	RenderSessionExpired struct{}
	// RenderCancelled confirms cancellation.
	RenderCancelled struct{}
)

func (RenderPlanMenu) isEffect()       {}
func (RenderHowItWorks) isEffect()     {}
func (PutSession) isEffect()           {}
func (DeleteSession) isEffect()        {}
func (RenderPayment) isEffect()        {}
func (RenderUploadPrompt) isEffect()   {}
func (SubmitPayment) isEffect()        {}
func (RenderReceived) isEffect()       {}
func (RenderImageRequired) isEffect()  {}
func (RenderSessionExpired) isEffect() {}
func (RenderCancelled) isEffect()      {}

// Snapshot is the input of a transition. Session is nil when the user has none.
type Snapshot struct {
	State   state.State
	Session *session.Session
}

// Transition is the result of applying an event to a snapshot.
// Skipped transitions carry no effects and keep the state.
type Transition struct {
	From    state.State
	To      state.State
	Event   Kind
	Effects []Effect
	Skipped bool
}

// Machine holds the read-only inputs of the transition function.
type Machine struct {
	catalog *plans.Catalog
}

// NewMachine binds the transition function to a plan catalog.
func NewMachine(catalog *plans.Catalog) Machine {
	return Machine{catalog: catalog}
}

// Next computes the transition for ev. It performs no I/O.
// An unknown plan id returns an error wrapping plans.ErrUnknownPlan and no transition.
func (m Machine) Next(snap Snapshot, ev Event) (Transition, error) {
	from := snap.State
	if from == "" {
		from = Idle
	}
	tr := Transition{From: from, To: from, Event: ev.Kind}
	move := func(to state.State, effects ...Effect) (Transition, error) {
		tr.To = to
		tr.Effects = effects
		return tr, nil
	}

	switch ev.Kind {
	case EventStart:
		return move(SelectPlan, RenderPlanMenu{Welcome: true})
	case EventCancel:
		return move(Cancelled, RenderCancelled{})
	}

	switch from {
	case SelectPlan:
		switch ev.Kind {
		case EventPlanChosen:
			plan, err := m.catalog.Get(ev.PlanID)
			if err != nil {
				return tr, fmt.Errorf("choose plan: %w", err)
			}
			return move(PaymentConfirmation, PutSession{Plan: plan}, RenderPayment{Plan: plan})
		case EventHowItWorks:
			return move(SelectPlan, RenderHowItWorks{})
		case EventBackToPlan:
			return move(SelectPlan, RenderPlanMenu{})
		}
	case PaymentConfirmation:
		switch ev.Kind {
		case EventPaid:
			return move(UploadScreenshot, RenderUploadPrompt{})
		case EventChangePlan:
			return move(SelectPlan, DeleteSession{}, RenderPlanMenu{})
		case EventBackToPlan:
			return move(SelectPlan, RenderPlanMenu{})
		}
	case UploadScreenshot:
		switch ev.Kind {
		case EventPhoto:
			if snap.Session == nil {
				return move(SelectPlan, RenderSessionExpired{})
			}
			plan, err := m.catalog.Get(snap.Session.PlanID)
			if err != nil {
				return tr, fmt.Errorf("submit proof: %w", err)
			}
			return move(Completed, SubmitPayment{Plan: plan, FileID: ev.FileID}, RenderReceived{})
		case EventNonImage:
			return move(UploadScreenshot, RenderImageRequired{})
		}
	}

	tr.Skipped = true
	return tr, nil
}

// IsUnknownPlan reports whether err was caused by a plan id outside the catalog.
func IsUnknownPlan(err error) bool {
	return errors.Is(err, plans.ErrUnknownPlan)
}
