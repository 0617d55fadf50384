package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"flashdeck/internal/config"
)

// fakeSheet serves the two Values endpoints the store calls.
type fakeSheet struct {
	mu     sync.Mutex
	values [][]interface{}
	fail   bool
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Range: "Sheet1", Values: f.values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		if got := r.URL.Query().Get("valueInputOption"); got != "RAW" {
			http.Error(w, "bad valueInputOption "+got, http.StatusBadRequest)
			return
		}
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.values = append(f.values, vr.Values...)
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{SpreadsheetId: "deck"})
	default:
		http.NotFound(w, r)
	}
}

func openFakeSheets(t *testing.T, fake *fakeSheet) *SheetsStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := OpenSheets(context.Background(),
		config.SheetsConfig{SpreadsheetID: "deck"},
		nil, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return store
}

func TestSheetsListRows(t *testing.T) {
	fake := &fakeSheet{values: [][]interface{}{
		{"Question", "Answer", "Category", "Difficulty"},
		{"What is WACC?", "Weighted average cost of capital", "Finance", "Easy"},
		{"What is EBITDA?", "Earnings before ..."},
	}}
	store := openFakeSheets(t, fake)

	rows, err := store.ListRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Finance", rows[0]["Category"])
	assert.Equal(t, "", rows[1]["Difficulty"])
}

func TestSheetsAppendRow(t *testing.T) {
	fake := &fakeSheet{values: [][]interface{}{{"question", "answer", "category", "difficulty"}}}
	store := openFakeSheets(t, fake)
	ctx := context.Background()

	require.NoError(t, store.AppendRow(ctx, Record{Question: "q", Answer: "a", Category: "c", Difficulty: "d"}))

	rows, err := store.ListRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"question": "q", "answer": "a", "category": "c", "difficulty": "d"}, rows[0])
}

func TestSheetsErrors(t *testing.T) {
	store := openFakeSheets(t, &fakeSheet{fail: true})
	ctx := context.Background()

	_, err := store.ListRows(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = store.AppendRow(ctx, Record{Question: "q", Answer: "a", Category: "c", Difficulty: "d"})
	assert.ErrorIs(t, err, ErrStoreWrite)
}

func TestOpenSheetsRequiresSpreadsheet(t *testing.T) {
	_, err := OpenSheets(context.Background(), config.SheetsConfig{}, nil, nil, option.WithoutAuthentication())
	assert.Error(t, err)
}
