package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flashdeck/internal/deck"
	"flashdeck/internal/session"
	"flashdeck/internal/storage"
)

var (
	addQuestion   string
	addAnswer     string
	addCategory   string
	addDifficulty string
	addCode       string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a flashcard to the store (admin only)",
	Long: `Appends one card. --code must match the configured admin code.

Example:
  flashdeck add --question "What is WACC?" --answer "Weighted average cost of capital" \
    --category Finance --difficulty Easy`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addQuestion, "question", "q", "", "Question text")
	addCmd.Flags().StringVarP(&addAnswer, "answer", "a", "", "Answer text")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category")
	addCmd.Flags().StringVar(&addDifficulty, "difficulty", "", "Difficulty")
	addCmd.Flags().StringVar(&addCode, "code", "", "Admin code")
}

func runAdd(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Adding does not read the deck; the card appears on the next load.
	sess := session.New(deck.Deck{}, store, session.StaticCode(cfg.AdminCode), session.WithLogger(logger))
	if err := sess.Login(addCode); err != nil {
		return err
	}
	if err := sess.AddFlashcard(cmd.Context(), addQuestion, addAnswer, addCategory, addDifficulty); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Flashcard added successfully!")
	return nil
}
