// Package tgbot binds the conversation engine to Telegram.
package tgbot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m3rciful/paybot/bot/conversation"
	"github.com/m3rciful/paybot/bot/render"
	"github.com/m3rciful/paybot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// API is the subset of *tele.Bot used for outbound calls.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

var (
	_ API                   = (*tele.Bot)(nil)
	_ conversation.Prompter = (*PromptSender)(nil)
)

// PromptSender delivers rendered prompts to private chats.
type PromptSender struct {
	api API
}

// NewPromptSender wraps a bot API.
func NewPromptSender(api API) *PromptSender {
	return &PromptSender{api: api}
}

// SendPrompt sends p as Markdown text, or as a photo with caption when p.Photo is set.
func (s *PromptSender) SendPrompt(_ context.Context, chatID int64, p render.Prompt) (int, error) {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: Markup(p.Buttons)}

	var what interface{} = p.Text
	if len(p.Photo) > 0 {
		what = &tele.Photo{File: tele.FromReader(bytes.NewReader(p.Photo)), Caption: p.Text}
	}
	msg, err := s.api.Send(tele.ChatID(chatID), what, opts)
	if err != nil {
		return 0, err
	}
	if msg == nil {
		return 0, errors.New("tgbot: empty send response")
	}
	return msg.ID, nil
}

// DeletePrompt removes a previously sent prompt.
func (s *PromptSender) DeletePrompt(_ context.Context, chatID int64, messageID int) error {
	if messageID == 0 {
		return nil
	}
	if err := s.api.Delete(tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

// Markup converts rendered buttons to an inline keyboard; nil when there are none.
func Markup(rows [][]render.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			r = append(r, keyboard.InlineBtn{Text: b.Text, Unique: b.Unique, Data: b.Data})
		}
		kb = append(kb, r)
	}
	return keyboard.InlineButtonsRows(kb...)
}
