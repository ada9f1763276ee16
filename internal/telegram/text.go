package telegram

import (
	"strings"
	"unicode/utf8"
)

const MaxMessageLen = 4096

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// EscapeMarkdown escapes user text for the legacy Markdown parse mode.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// Truncate cuts text to at most maxLen characters, marking the cut.
func Truncate(text string, maxLen int) string {
	const marker = "\n\n... (truncated)"
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	keep := maxLen - utf8.RuneCountInString(marker)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(text)[:keep]) + marker
}
