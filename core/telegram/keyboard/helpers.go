// Package keyboard builds inline keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button: Unique is the callback key, Data its payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtonsRows lays buttons out row by row. It returns nil for no rows,
// which telebot treats as "no keyboard".
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := &tele.ReplyMarkup{}
	kb := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make(tele.Row, 0, len(row))
		for _, b := range row {
			btns = append(btns, markup.Data(b.Text, b.Unique, b.Data))
		}
		kb = append(kb, btns)
	}
	markup.Inline(kb...)
	return markup
}
