package storage

import (
	"context"
	"sync"
)

var _ RowStore = (*Memory)(nil)

// Memory is an in-process row store.
type Memory struct {
	mu   sync.Mutex
	rows []Row
}

func NewMemory(rows ...Row) *Memory {
	return &Memory{rows: rows}
}

func (m *Memory) ListRows(ctx context.Context) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (m *Memory) AppendRow(ctx context.Context, rec Record) error {
	row := make(Row, len(Columns))
	for i, v := range rec.Values() {
		row[Columns[i]] = v
	}
	m.mu.Lock()
	m.rows = append(m.rows, row)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
