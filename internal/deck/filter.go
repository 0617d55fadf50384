package deck

import (
	"math/rand/v2"
	"slices"

	"flashdeck/internal/storage"
)

// Selection is the filter a working set is built from.
type Selection struct {
	Categories   []string
	Difficulties []string
	Shuffle      bool
}

// All selects every category and difficulty in d, unshuffled.
func All(d Deck) Selection {
	return Selection{
		Categories:   slices.Clone(d.Categories),
		Difficulties: slices.Clone(d.Difficulties),
	}
}

// Equal compares selections as sets; the order values were picked in does
// not matter.
func (s Selection) Equal(o Selection) bool {
	return s.Shuffle == o.Shuffle &&
		sameSet(s.Categories, o.Categories) &&
		sameSet(s.Difficulties, o.Difficulties)
}

func (s Selection) HasCategory(c string) bool   { return slices.Contains(s.Categories, c) }
func (s Selection) HasDifficulty(d string) bool { return slices.Contains(s.Difficulties, d) }

// Clone returns a copy that shares no slices with s.
func (s Selection) Clone() Selection {
	return Selection{
		Categories:   slices.Clone(s.Categories),
		Difficulties: slices.Clone(s.Difficulties),
		Shuffle:      s.Shuffle,
	}
}

// Apply returns the cards whose category and difficulty are both selected.
// An empty category or difficulty selection matches nothing. Without
// shuffle the deck order is kept; with shuffle every call draws a fresh
// permutation from rng, or from the global source when rng is nil.
func Apply(d Deck, sel Selection, rng *rand.Rand) []storage.Record {
	if len(sel.Categories) == 0 || len(sel.Difficulties) == 0 {
		return []storage.Record{}
	}
	categories := toSet(sel.Categories)
	difficulties := toSet(sel.Difficulties)

	out := make([]storage.Record, 0, len(d.Records))
	for _, rec := range d.Records {
		if _, ok := categories[rec.Category]; !ok {
			continue
		}
		if _, ok := difficulties[rec.Difficulty]; !ok {
			continue
		}
		out = append(out, rec)
	}
	if sel.Shuffle {
		swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
		if rng != nil {
			rng.Shuffle(len(out), swap)
		} else {
			rand.Shuffle(len(out), swap)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sameSet(a, b []string) bool {
	sa, sb := toSet(a), toSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}
