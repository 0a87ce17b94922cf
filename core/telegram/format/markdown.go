// Package format holds text helpers for Telegram's legacy Markdown mode.
package format

import "strings"

var markdownV1 = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

// EscapeV1 escapes user-supplied text for tele.ModeMarkdown messages.
func EscapeV1(text string) string {
	return markdownV1.Replace(text)
}
