// Package session holds the state of one study session: the working set
// built from the current filter, the card cursor, which answers are showing,
// and whether the user has admin rights.
//
// A Session is owned by a single goroutine. Each action runs to completion
// before the next one starts.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flashdeck/internal/deck"
	"flashdeck/internal/storage"
)

var (
	ErrInvalidCredential = errors.New("invalid admin code")
	ErrValidation        = errors.New("incomplete flashcard")
	ErrNotAdmin          = errors.New("admin login required")
)

// Appender is the write half of a row store.
type Appender interface {
	AppendRow(ctx context.Context, rec storage.Record) error
}

type Session struct {
	ID string

	deck     deck.Deck
	working  []storage.Record
	cursor   int
	revealed map[int]bool
	isAdmin  bool
	applied  *deck.Selection

	store    Appender
	verifier Verifier
	rng      *rand.Rand
	logger   *zap.Logger
}

type Option func(*Session)

// WithRand fixes the shuffle source. Without it the global source is used.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New starts a session over d with every category and difficulty selected.
// A nil verifier rejects every login.
func New(d deck.Deck, store Appender, verifier Verifier, opts ...Option) *Session {
	if verifier == nil {
		verifier = StaticCode("")
	}
	s := &Session{
		ID:       uuid.NewString(),
		deck:     d,
		revealed: map[int]bool{},
		store:    store,
		verifier: verifier,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.ID))
	s.OnFilterChanged(deck.All(d))
	return s
}

func (s *Session) Deck() deck.Deck              { return s.deck }
func (s *Session) WorkingSet() []storage.Record { return s.working }
func (s *Session) Len() int                     { return len(s.working) }
func (s *Session) Cursor() int                  { return s.cursor }
func (s *Session) IsAdmin() bool                { return s.isAdmin }

// Selection returns the last applied filter.
func (s *Session) Selection() deck.Selection {
	if s.applied == nil {
		return deck.Selection{}
	}
	return s.applied.Clone()
}

// Current returns the card under the cursor, false when the working set is
// empty.
func (s *Session) Current() (storage.Record, bool) {
	if len(s.working) == 0 {
		return storage.Record{}, false
	}
	return s.working[s.cursor], true
}

// Revealed reports whether the answer of the current card is showing.
func (s *Session) Revealed() bool { return s.revealed[s.cursor] }

func (s *Session) HasNext() bool     { return s.cursor < len(s.working)-1 }
func (s *Session) HasPrevious() bool { return s.cursor > 0 }

// GoNext moves to the next card; at the last card it does nothing.
func (s *Session) GoNext() {
	s.cursor = clampCursor(s.cursor+1, len(s.working))
}

// GoPrevious moves to the previous card; at the first card it does nothing.
func (s *Session) GoPrevious() {
	s.cursor = clampCursor(s.cursor-1, len(s.working))
}

// ToggleAnswer shows or hides the answer of the current card.
func (s *Session) ToggleAnswer() {
	if len(s.working) == 0 {
		return
	}
	s.revealed[s.cursor] = !s.revealed[s.cursor]
}

// OnFilterChanged rebuilds the working set when sel differs from the last
// applied selection, putting the cursor back on the first card and hiding
// every answer. It reports whether a rebuild happened.
func (s *Session) OnFilterChanged(sel deck.Selection) bool {
	if s.applied != nil && s.applied.Equal(sel) {
		return false
	}
	s.rebuild(sel)
	return true
}

// Reshuffle rebuilds the working set with the current selection. With
// shuffle on this draws a new order.
func (s *Session) Reshuffle() {
	s.rebuild(s.Selection())
}

// SetDeck swaps in a freshly loaded deck and rebuilds the working set. The
// previous selection is kept as far as its values still exist; a dimension
// that had everything selected selects everything in the new deck too.
func (s *Session) SetDeck(d deck.Deck) {
	prev := s.Selection()
	sel := deck.Selection{
		Categories:   carry(prev.Categories, s.deck.Categories, d.Categories),
		Difficulties: carry(prev.Difficulties, s.deck.Difficulties, d.Difficulties),
		Shuffle:      prev.Shuffle,
	}
	s.deck = d
	s.rebuild(sel)
}

func (s *Session) rebuild(sel deck.Selection) {
	sel = sel.Clone()
	s.working = deck.Apply(s.deck, sel, s.rng)
	s.cursor = 0
	s.revealed = map[int]bool{}
	s.applied = &sel
	s.logger.Debug("working set rebuilt",
		zap.Int("cards", len(s.working)),
		zap.Strings("categories", sel.Categories),
		zap.Strings("difficulties", sel.Difficulties),
		zap.Bool("shuffle", sel.Shuffle),
	)
}

// Login grants admin rights when the verifier accepts code. A wrong code
// leaves the admin flag as it was.
func (s *Session) Login(code string) error {
	if !s.verifier.Verify(code) {
		s.logger.Info("admin login rejected")
		return ErrInvalidCredential
	}
	s.isAdmin = true
	s.logger.Info("admin login")
	return nil
}

func (s *Session) Logout() { s.isAdmin = false }

// AddFlashcard appends a card to the store. The deck is not reloaded, so
// the card shows up only after the next reload.
func (s *Session) AddFlashcard(ctx context.Context, question, answer, category, difficulty string) error {
	if !s.isAdmin {
		return ErrNotAdmin
	}
	rec := storage.Record{
		Question:   strings.TrimSpace(question),
		Answer:     strings.TrimSpace(answer),
		Category:   strings.TrimSpace(category),
		Difficulty: strings.TrimSpace(difficulty),
	}
	var missing []string
	for i, v := range rec.Values() {
		if v == "" {
			missing = append(missing, storage.Columns[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if s.store == nil {
		return fmt.Errorf("%w: no store", storage.ErrStoreWrite)
	}
	if err := s.store.AppendRow(ctx, rec); err != nil {
		s.logger.Warn("add flashcard", zap.Error(err))
		if !errors.Is(err, storage.ErrStoreWrite) {
			err = fmt.Errorf("%w: %w", storage.ErrStoreWrite, err)
		}
		return err
	}
	s.logger.Info("flashcard added", zap.String("category", rec.Category), zap.String("difficulty", rec.Difficulty))
	return nil
}

// carry maps a selection over vocabulary old onto vocabulary next.
func carry(selected, old, next []string) []string {
	if containsAll(selected, old) {
		return slices.Clone(next)
	}
	out := make([]string, 0, len(selected))
	for _, v := range selected {
		if slices.Contains(next, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
