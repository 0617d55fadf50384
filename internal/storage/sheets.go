package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"flashdeck/internal/config"
)

var _ RowStore = (*SheetsStore)(nil)

const defaultSheetRange = "Sheet1"

// SheetsStore reads and appends flashcards in a Google Sheets range whose
// first row holds the column headers.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
	logger        *zap.Logger
}

// OpenSheets authenticates with a service-account key and binds to one
// spreadsheet range. Extra client options are appended after the
// credentials, which lets tests point the client at a local endpoint.
func OpenSheets(ctx context.Context, cfg config.SheetsConfig, creds []byte, logger *zap.Logger, opts ...option.ClientOption) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets spreadsheet_id is empty")
	}
	clientOpts := make([]option.ClientOption, 0, len(opts)+2)
	if len(creds) > 0 {
		clientOpts = append(clientOpts,
			option.WithCredentialsJSON(creds),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
	}
	clientOpts = append(clientOpts, opts...)
	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	rng := cfg.Range
	if rng == "" {
		rng = defaultSheetRange
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetsStore{svc: svc, spreadsheetID: cfg.SpreadsheetID, readRange: rng, logger: logger}, nil
}

func (s *SheetsStore) ListRows(ctx context.Context) ([]Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, unavailable(fmt.Errorf("read %s: %w", s.readRange, err))
	}
	table := make([][]string, 0, len(resp.Values))
	for _, cells := range resp.Values {
		row := make([]string, len(cells))
		for i, cell := range cells {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		table = append(table, row)
	}
	s.logger.Debug("sheet read", zap.Int("rows", len(table)))
	return rowsFromTable(table), nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, rec Record) error {
	values := rec.Values()
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cells}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.readRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Warn("append row", zap.Error(err))
		return writeFailed(err)
	}
	return nil
}

func (s *SheetsStore) Close() error { return nil }
