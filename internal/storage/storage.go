// Package storage is the row store behind a deck: a flat table of flashcards
// that can be listed in full and appended to one row at a time.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"flashdeck/internal/config"
)

var (
	// ErrStoreUnavailable is returned when the store cannot be opened,
	// authenticated against, or read. Callers treat it as fatal.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStoreWrite is returned when the store rejects an append.
	ErrStoreWrite = errors.New("store write failed")
)

// Driver identifies a row store backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverSheets   Driver = "sheets"
	DriverCSV      Driver = "csv"
	DriverS3       Driver = "s3"
	DriverMemory   Driver = "memory"
)

// Columns is the positional layout used for appends and for the header of
// stores that write one.
var Columns = []string{"question", "answer", "category", "difficulty"}

// Row is one source row keyed by the column headers exactly as the backend
// reports them. Header normalization is the caller's job.
type Row map[string]string

// Record is the write shape of a flashcard.
type Record struct {
	Question   string
	Answer     string
	Category   string
	Difficulty string
}

// Values returns the record in Columns order.
func (r Record) Values() []string {
	return []string{r.Question, r.Answer, r.Category, r.Difficulty}
}

// RowStore lists and appends flashcard rows. AppendRow is not idempotent:
// appending the same record twice stores two rows.
type RowStore interface {
	ListRows(ctx context.Context) ([]Row, error)
	AppendRow(ctx context.Context, rec Record) error
	Close() error
}

// Open builds the row store selected by cfg.Driver. Any failure wraps
// ErrStoreUnavailable.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (RowStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := Driver(cfg.Store.Driver)
	logger = logger.With(zap.String("driver", string(driver)))

	var (
		store RowStore
		err   error
	)
	switch driver {
	case DriverSQLite, "":
		store, err = OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
	case DriverPostgres:
		store, err = OpenPostgres(ctx, cfg.Store.PostgresDSN, logger)
	case DriverSheets:
		var creds []byte
		creds, err = cfg.SheetsCredentials()
		if err == nil {
			store, err = OpenSheets(ctx, cfg.Store.Sheets, creds, logger)
		}
	case DriverCSV:
		store, err = OpenCSV(cfg.Store.CSVPath, logger)
	case DriverS3:
		store, err = OpenS3(ctx, cfg.Store.S3, logger)
	case DriverMemory:
		store = NewMemory()
	default:
		err = fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		logger.Error("open store", zap.Error(err))
		return nil, unavailable(err)
	}
	logger.Debug("store opened")
	return store, nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func writeFailed(err error) error {
	if errors.Is(err, ErrStoreWrite) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreWrite, err)
}

// rowsFromTable turns a header row followed by data rows into Rows. Short
// rows are padded with empty cells; cells past the header are dropped. A
// UTF-8 byte-order mark before the first header is removed.
func rowsFromTable(table [][]string) []Row {
	if len(table) == 0 {
		return nil
	}
	header := slices.Clone(table[0])
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	rows := make([]Row, 0, len(table)-1)
	for _, cells := range table[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
