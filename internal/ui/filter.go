package ui

import (
	"fmt"
	"strings"

	"flashdeck/internal/deck"
)

type filterKind int

const (
	filterCategory filterKind = iota
	filterDifficulty
	filterShuffle
)

type filterItem struct {
	kind    filterKind
	value   string
	checked bool
}

// filterState is the pending filter while the panel is open. Nothing is
// applied to the session until the panel is confirmed.
type filterState struct {
	items []filterItem
	index int
}

func newFilterState(d deck.Deck, sel deck.Selection) *filterState {
	f := &filterState{}
	for _, c := range d.Categories {
		f.items = append(f.items, filterItem{kind: filterCategory, value: c, checked: sel.HasCategory(c)})
	}
	for _, v := range d.Difficulties {
		f.items = append(f.items, filterItem{kind: filterDifficulty, value: v, checked: sel.HasDifficulty(v)})
	}
	f.items = append(f.items, filterItem{kind: filterShuffle, value: "Randomize card order", checked: sel.Shuffle})
	return f
}

func (f *filterState) move(delta int) {
	f.index = clampCursor(f.index+delta, len(f.items))
}

func (f *filterState) toggle() {
	if len(f.items) == 0 {
		return
	}
	f.items[f.index].checked = !f.items[f.index].checked
}

// toggleGroup checks every item in the current item's group, or clears them
// all when they are already checked.
func (f *filterState) toggleGroup() {
	if len(f.items) == 0 {
		return
	}
	kind := f.items[f.index].kind
	all := true
	for _, it := range f.items {
		if it.kind == kind && !it.checked {
			all = false
			break
		}
	}
	for i := range f.items {
		if f.items[i].kind == kind {
			f.items[i].checked = !all
		}
	}
}

func (f *filterState) selection() deck.Selection {
	sel := deck.Selection{Categories: []string{}, Difficulties: []string{}}
	for _, it := range f.items {
		if !it.checked {
			continue
		}
		switch it.kind {
		case filterCategory:
			sel.Categories = append(sel.Categories, it.value)
		case filterDifficulty:
			sel.Difficulties = append(sel.Difficulties, it.value)
		case filterShuffle:
			sel.Shuffle = true
		}
	}
	return sel
}

func (f *filterState) render(st styles) string {
	headings := map[filterKind]string{
		filterCategory:   "Filter by Category:",
		filterDifficulty: "Filter by Difficulty:",
		filterShuffle:    "Options:",
	}
	var b strings.Builder
	last := filterKind(-1)
	for i, it := range f.items {
		if it.kind != last {
			if last != -1 {
				b.WriteString("\n")
			}
			b.WriteString(st.summary.Render(headings[it.kind]))
			b.WriteString("\n")
			last = it.kind
		}
		cursor := " "
		checkbox := "[ ]"
		if it.checked {
			checkbox = "[x]"
		}
		line := fmt.Sprintf("%s %s", checkbox, it.value)
		if i == f.index {
			cursor = ">"
			line = st.selected.Render(line)
		}
		b.WriteString(cursor + " " + line + "\n")
	}
	return b.String()
}
