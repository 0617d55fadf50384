package ui

import (
	"fmt"
	"strings"

	"flashdeck/internal/storage"
)

const defaultWidth = 80

// RenderList renders every card with its plain-text answer, one box per card.
func RenderList(records []storage.Record, width int) string {
	return renderList(newStyles(), records, width, nil)
}

// renderList draws the list view. answer formats each answer; nil leaves it
// as plain text.
func renderList(st styles, records []storage.Record, width int, answer func(string) string) string {
	if answer == nil {
		answer = func(s string) string { return s }
	}
	if len(records) == 0 {
		return st.warning.Render("No flashcards match the selected filters.")
	}
	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		body := cardHeader(st, rec) + "\n" + st.question.Render(rec.Question) +
			"\n\n" + st.heading.Render("Answer") + "\n" + answer(rec.Answer)
		b.WriteString(st.card.Width(cardWidth(width)).Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

func cardHeader(st styles, rec storage.Record) string {
	header := st.label.Render(emptyPlaceholder(rec.Category))
	if strings.TrimSpace(rec.Difficulty) != "" {
		header += " " + st.disabled.Render(rec.Difficulty)
	}
	return header
}

// cardWidth leaves room for the card border and padding.
func cardWidth(width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	w := width - 6
	if w < 20 {
		w = 20
	}
	return w
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(none)"
	}
	return v
}

func countLine(n int) string {
	if n == 1 {
		return "Showing 1 flashcard"
	}
	return fmt.Sprintf("Showing %d flashcards", n)
}
