package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// DisplayName joins first and last name, falling back to the username.
func DisplayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(u.Username)
}
