package ui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

// Truncate cuts str to width display cells, marking the cut with "..."
func Truncate(str string, width int) string {
	if width <= 0 || runewidth.StringWidth(str) <= width {
		return str
	}
	return runewidth.Truncate(str, width, "...")
}

// ShortenLabel keeps the upper-cased initial of every dash or space separated word
func ShortenLabel(label string) string {
	parts := strings.FieldsFunc(label, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	var b strings.Builder
	for _, part := range parts {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// BoolText renders a flag as Y or N
func BoolText(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}

// CIText renders one letter per status context in context name order:
// Y for success, N for failure, - for pending. A PR without statuses renders as "?".
func CIText(ci models.CIStatus) string {
	if len(ci.Contexts) == 0 {
		return "?"
	}
	parts := make([]string, 0, len(ci.Contexts))
	for _, ctx := range ci.Contexts {
		switch ctx.State {
		case models.CIStateSuccess:
			parts = append(parts, "Y")
		case models.CIStateFailure:
			parts = append(parts, "N")
		default:
			parts = append(parts, "-")
		}
	}
	return strings.Join(parts, "/")
}

// LabelText joins label names, shortened unless verbose
func LabelText(labels []string, verbose bool) string {
	if verbose {
		return strings.Join(labels, ",")
	}
	short := make([]string, 0, len(labels))
	for _, label := range labels {
		short = append(short, ShortenLabel(label))
	}
	return strings.Join(short, ",")
}
