package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var _ RowStore = (*CSVStore)(nil)

// CSVStore keeps flashcards in a local CSV file with a header row. A missing
// file reads as an empty deck and is created on the first append.
type CSVStore struct {
	path   string
	logger *zap.Logger
}

func OpenCSV(path string, logger *zap.Logger) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("csv path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{path: path, logger: logger}, nil
}

func (s *CSVStore) ListRows(ctx context.Context) ([]Row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	defer f.Close()
	rows, err := decodeCSV(f)
	if err != nil {
		return nil, unavailable(err)
	}
	return rows, nil
}

func (s *CSVStore) AppendRow(ctx context.Context, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return writeFailed(err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return writeFailed(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return writeFailed(err)
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return writeFailed(err)
		}
		if last[0] != '\n' {
			if _, err := f.Write([]byte{'\n'}); err != nil {
				return writeFailed(err)
			}
		}
	}
	if err := encodeCSV(f, info.Size() == 0, rec); err != nil {
		s.logger.Warn("append row", zap.Error(err))
		return writeFailed(err)
	}
	return nil
}

func (s *CSVStore) Close() error { return nil }

func decodeCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	table, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return rowsFromTable(table), nil
}

func encodeCSV(w io.Writer, withHeader bool, rec Record) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(Columns); err != nil {
			return err
		}
	}
	if err := cw.Write(rec.Values()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// appendCSV returns existing with rec appended, adding a header when
// existing is empty.
func appendCSV(existing []byte, rec Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	if err := encodeCSV(&buf, len(existing) == 0, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
