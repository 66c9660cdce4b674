package rendering

import "strings"

// EscapeMarkdown escapes characters that would otherwise be read as Markdown
// or table syntax. Newlines collapse to spaces so a value stays in one cell.
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '|', '<', '>', '#':
			result.WriteByte('\\')
			result.WriteRune(r)
		case '\n', '\r':
			result.WriteByte(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
