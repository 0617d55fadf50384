package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flashdeck/internal/config"
	"flashdeck/internal/deck"
	"flashdeck/internal/logging"
	"flashdeck/internal/session"
	"flashdeck/internal/storage"
	"flashdeck/internal/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flashdeck",
	Short: "Study flashcards from a shared deck",
	Long: `flashdeck loads a deck of question/answer cards from a row store
(SQLite, Postgres, Google Sheets, CSV or S3) and lets you study them with
category and difficulty filters.

Run without arguments to start the interactive study screen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = config.ResolveConfigPath()
		}
		var err error
		cfg, err = config.LoadOrCreate(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = logging.New(cfg.LogPath, cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("driver", cfg.Store.Driver))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runStudy,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $FLASHDECK_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(addCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDeck opens the configured store and loads the deck through a loader
// using the configured TTL. The caller closes the store.
func openDeck(ctx context.Context) (storage.RowStore, *deck.Loader, deck.Deck, error) {
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, deck.Deck{}, err
	}
	ttl, err := cfg.DeckTTLDuration()
	if err != nil {
		store.Close()
		return nil, nil, deck.Deck{}, err
	}
	loader := deck.NewLoader(store, ttl, logger)
	d, err := loader.Load(ctx)
	if err != nil {
		store.Close()
		return nil, nil, deck.Deck{}, err
	}
	return store, loader, d, nil
}

func runStudy(cmd *cobra.Command, args []string) error {
	store, loader, d, err := openDeck(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	sess := session.New(d, store, session.StaticCode(cfg.AdminCode), session.WithLogger(logger))
	logger.Info("session started", zap.String("session", sess.ID), zap.Int("cards", d.Len()))
	if err := ui.Run(sess, loader, cfg, logger); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
