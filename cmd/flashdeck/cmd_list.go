package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flashdeck/internal/deck"
	"flashdeck/internal/ui"
)

var (
	listCategories   []string
	listDifficulties []string
	listShuffle      bool
	listWidth        int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the cards that match the filters, answers included",
	Long: `Prints every matching card. Without --category or --difficulty every
value of that column is selected.

Example:
  flashdeck list --category Finance --difficulty Easy --shuffle`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the categories and difficulties in the deck",
	Args:  cobra.NoArgs,
	RunE:  runVocab,
}

func init() {
	listCmd.Flags().StringSliceVar(&listCategories, "category", nil, "Category to include (repeatable)")
	listCmd.Flags().StringSliceVar(&listDifficulties, "difficulty", nil, "Difficulty to include (repeatable)")
	listCmd.Flags().BoolVar(&listShuffle, "shuffle", false, "Randomize card order")
	listCmd.Flags().IntVar(&listWidth, "width", 80, "Output width")
}

func runList(cmd *cobra.Command, args []string) error {
	store, _, d, err := openDeck(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	sel := listSelection(d, listCategories, listDifficulties, listShuffle)
	records := deck.Apply(d, sel, nil)
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderList(records, listWidth))
	return nil
}

// listSelection turns flag values into a selection. An unset flag selects
// the whole vocabulary of its column.
func listSelection(d deck.Deck, categories, difficulties []string, shuffle bool) deck.Selection {
	sel := deck.All(d)
	sel.Shuffle = shuffle
	if len(categories) > 0 {
		sel.Categories = trimAll(categories)
	}
	if len(difficulties) > 0 {
		sel.Difficulties = trimAll(difficulties)
	}
	return sel
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func runVocab(cmd *cobra.Command, args []string) error {
	store, _, d, err := openDeck(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cards: %d\n", d.Len())
	fmt.Fprintf(w, "Categories: %s\n", joinOrNone(d.Categories))
	fmt.Fprintf(w, "Difficulties: %s\n", joinOrNone(d.Difficulties))
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
