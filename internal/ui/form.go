package ui

import (
	"fmt"
	"slices"
	"strings"
)

// cardForm holds the add-card fields while the admin steps through them
// with the single shared text input.
type cardForm struct {
	question   string
	answer     string
	category   string
	difficulty string
	index      int
}

func formFields() []string {
	return []string{"question", "answer", "category", "difficulty"}
}

func (f cardForm) currentLabel() string {
	return formFields()[f.index]
}

func (f cardForm) currentValue() string {
	switch f.index {
	case 0:
		return f.question
	case 1:
		return f.answer
	case 2:
		return f.category
	case 3:
		return f.difficulty
	default:
		return ""
	}
}

func (f *cardForm) setCurrentValue(v string) {
	switch f.index {
	case 0:
		f.question = v
	case 1:
		f.answer = v
	case 2:
		f.category = v
	case 3:
		f.difficulty = v
	}
}

// firstEmpty returns the index of the first blank field, -1 if none.
func (f cardForm) firstEmpty() int {
	for i, v := range []string{f.question, f.answer, f.category, f.difficulty} {
		if strings.TrimSpace(v) == "" {
			return i
		}
	}
	return -1
}

func (f cardForm) render(st styles) string {
	values := []string{f.question, f.answer, f.category, f.difficulty}
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == f.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = st.disabled.Render("(empty)")
		}
		b.WriteString(fmt.Sprintf("%s %-10s : %s\n", prefix, name, val))
	}
	return b.String()
}

// complete picks the option that extends value. When value already is an
// option it moves to the next one, so repeated tabs cycle the vocabulary.
func complete(value string, options []string) string {
	if len(options) == 0 {
		return value
	}
	if i := slices.Index(options, value); i >= 0 {
		return options[(i+1)%len(options)]
	}
	lower := strings.ToLower(value)
	for _, o := range options {
		if strings.HasPrefix(strings.ToLower(o), lower) {
			return o
		}
	}
	return value
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
