package tgbot

import (
	"github.com/m3rciful/paybot/bot/render"
	tg "github.com/m3rciful/paybot/core/telegram"
	"github.com/m3rciful/paybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Register binds commands and callback buttons to the registry.
func (h *Handlers) Register(reg *tg.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.Start, Description: "Choose a membership plan"}},
		{"/cancel", commands.Command{Handler: h.Cancel, Description: "Cancel the current payment"}},
		{"/pending", commands.Command{
			Handler:     h.Pending,
			Description: "List payments awaiting verification",
			AdminOnly:   true,
			Hidden:      true,
		}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return err
		}
	}

	cbs := map[string]tele.HandlerFunc{
		render.CallbackPlan:        h.PlanChosen,
		render.CallbackHowItWorks:  h.HowItWorks,
		render.CallbackBackToPlans: h.BackToPlans,
		render.CallbackPaymentDone: h.PaymentDone,
		render.CallbackChangePlan:  h.ChangePlan,
	}
	for key, fn := range cbs {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return err
		}
	}
	return nil
}
