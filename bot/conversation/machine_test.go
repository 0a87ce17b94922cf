package conversation

import (
	"reflect"
	"testing"

	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/bot/session"
	"github.com/m3rciful/paybot/core/telegram/state"
)

func TestNextTable(t *testing.T) {
	m := NewMachine(plans.Default())
	three, _ := plans.Default().Get("3_months")
	sess := &session.Session{UserID: 1, PlanID: "3_months"}

	cases := []struct {
		name    string
		snap    Snapshot
		ev      Event
		to      state.State
		effects []Effect
	}{
		{"start from idle", Snapshot{State: Idle}, Event{Kind: EventStart}, SelectPlan, []Effect{RenderPlanMenu{Welcome: true}}},
		{"start mid dialogue", Snapshot{State: UploadScreenshot}, Event{Kind: EventStart}, SelectPlan, []Effect{RenderPlanMenu{Welcome: true}}},
		{"empty state is idle", Snapshot{}, Event{Kind: EventStart}, SelectPlan, []Effect{RenderPlanMenu{Welcome: true}}},
		{"choose plan", Snapshot{State: SelectPlan}, Event{Kind: EventPlanChosen, PlanID: "3_months"}, PaymentConfirmation, []Effect{PutSession{Plan: three}, RenderPayment{Plan: three}}},
		{"how it works", Snapshot{State: SelectPlan}, Event{Kind: EventHowItWorks}, SelectPlan, []Effect{RenderHowItWorks{}}},
		{"back from help", Snapshot{State: SelectPlan}, Event{Kind: EventBackToPlan}, SelectPlan, []Effect{RenderPlanMenu{}}},
		{"paid", Snapshot{State: PaymentConfirmation}, Event{Kind: EventPaid}, UploadScreenshot, []Effect{RenderUploadPrompt{}}},
		{"change plan", Snapshot{State: PaymentConfirmation}, Event{Kind: EventChangePlan}, SelectPlan, []Effect{DeleteSession{}, RenderPlanMenu{}}},
		{"back from payment", Snapshot{State: PaymentConfirmation}, Event{Kind: EventBackToPlan}, SelectPlan, []Effect{RenderPlanMenu{}}},
		{"photo with session", Snapshot{State: UploadScreenshot, Session: sess}, Event{Kind: EventPhoto, FileID: "f1"}, Completed, []Effect{SubmitPayment{Plan: three, FileID: "f1"}, RenderReceived{}}},
		{"photo without session", Snapshot{State: UploadScreenshot}, Event{Kind: EventPhoto, FileID: "f1"}, SelectPlan, []Effect{RenderSessionExpired{}}},
		{"non image", Snapshot{State: UploadScreenshot}, Event{Kind: EventNonImage}, UploadScreenshot, []Effect{RenderImageRequired{}}},
		{"cancel from payment", Snapshot{State: PaymentConfirmation}, Event{Kind: EventCancel}, Cancelled, []Effect{RenderCancelled{}}},
		{"cancel from idle", Snapshot{State: Idle}, Event{Kind: EventCancel}, Cancelled, []Effect{RenderCancelled{}}},
		{"cancel from select", Snapshot{State: SelectPlan}, Event{Kind: EventCancel}, Cancelled, []Effect{RenderCancelled{}}},
		{"cancel from upload", Snapshot{State: UploadScreenshot, Session: sess}, Event{Kind: EventCancel}, Cancelled, []Effect{RenderCancelled{}}},
		{"cancel after completion", Snapshot{State: Completed}, Event{Kind: EventCancel}, Cancelled, []Effect{RenderCancelled{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := m.Next(tc.snap, tc.ev)
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if tr.Skipped {
				t.Fatal("unexpected skip")
			}
			if tr.To != tc.to {
				t.Fatalf("to = %s, want %s", tr.To, tc.to)
			}
			if !reflect.DeepEqual(tr.Effects, tc.effects) {
				t.Fatalf("effects = %#v, want %#v", tr.Effects, tc.effects)
			}
		})
	}
}

func TestNextSkipsUnexpectedEvents(t *testing.T) {
	m := NewMachine(plans.Default())
	cases := []struct {
		from state.State
		ev   Event
	}{
		{Idle, Event{Kind: EventPhoto, FileID: "f"}},
		{Completed, Event{Kind: EventPlanChosen, PlanID: "1_month"}},
		{SelectPlan, Event{Kind: EventPaid}},
		{PaymentConfirmation, Event{Kind: EventNonImage}},
		{UploadScreenshot, Event{Kind: EventPaid}},
		{Cancelled, Event{Kind: EventHowItWorks}},
	}
	for _, tc := range cases {
		tr, err := m.Next(Snapshot{State: tc.from}, tc.ev)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.from, tc.ev.Kind, err)
		}
		if !tr.Skipped || tr.To != tc.from || len(tr.Effects) != 0 {
			t.Fatalf("%s/%s: transition = %+v", tc.from, tc.ev.Kind, tr)
		}
	}
}

func TestNextUnknownPlanFailsLoudly(t *testing.T) {
	m := NewMachine(plans.Default())
	tr, err := m.Next(Snapshot{State: SelectPlan}, Event{Kind: EventPlanChosen, PlanID: "lifetime"})
	if !IsUnknownPlan(err) {
		t.Fatalf("err = %v, want unknown plan", err)
	}
	if tr.To != SelectPlan || len(tr.Effects) != 0 {
		t.Fatalf("transition = %+v", tr)
	}

	_, err = m.Next(Snapshot{State: UploadScreenshot, Session: &session.Session{PlanID: "retired"}}, Event{Kind: EventPhoto, FileID: "f"})
	if !IsUnknownPlan(err) {
		t.Fatalf("stale session plan: err = %v", err)
	}
}

func TestInProgress(t *testing.T) {
	for s, want := range map[state.State]bool{
		Idle: false, SelectPlan: true, PaymentConfirmation: true,
		UploadScreenshot: true, Completed: false, Cancelled: false,
	} {
		if InProgress(s) != want {
			t.Fatalf("InProgress(%s) = %v", s, !want)
		}
	}
}
