// Package deck turns store rows into a deck of flashcards and derives the
// working set a study session steps through.
package deck

import (
	"slices"
	"strings"

	"flashdeck/internal/storage"
)

// Deck is every card loaded from the store, in store order, plus the
// distinct tag values available for filtering.
type Deck struct {
	Records      []storage.Record
	Categories   []string
	Difficulties []string
}

// FromRows normalizes column headers (trimmed, lowercased) and builds the
// deck. Cards with an empty category or difficulty are kept but add nothing
// to the vocabularies.
func FromRows(rows []storage.Row) Deck {
	d := Deck{Records: make([]storage.Record, 0, len(rows))}
	categories := map[string]struct{}{}
	difficulties := map[string]struct{}{}
	for _, row := range rows {
		cols := normalize(row)
		rec := storage.Record{
			Question:   cols["question"],
			Answer:     cols["answer"],
			Category:   cols["category"],
			Difficulty: cols["difficulty"],
		}
		d.Records = append(d.Records, rec)
		if present(rec.Category) {
			categories[rec.Category] = struct{}{}
		}
		if present(rec.Difficulty) {
			difficulties[rec.Difficulty] = struct{}{}
		}
	}
	d.Categories = sortedKeys(categories)
	d.Difficulties = sortedKeys(difficulties)
	return d
}

func (d Deck) Len() int { return len(d.Records) }

// normalize keys row by trimmed, lowercased header. When two headers collide
// the non-empty value wins.
func normalize(row storage.Row) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		key := strings.ToLower(strings.TrimSpace(k))
		if prev, ok := out[key]; ok && present(prev) && !present(v) {
			continue
		}
		out[key] = v
	}
	return out
}

func present(v string) bool {
	return strings.TrimSpace(v) != ""
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
