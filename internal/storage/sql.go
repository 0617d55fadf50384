package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var _ RowStore = (*SQLStore)(nil)

type dialect struct {
	driver string
	ddl    string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		ddl: `
CREATE TABLE IF NOT EXISTS flashcards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	category TEXT DEFAULT '',
	difficulty TEXT DEFAULT '',
	created_at TEXT NOT NULL
);`,
	}
	postgresDialect = dialect{
		driver:   "pgx",
		numbered: true,
		ddl: `
CREATE TABLE IF NOT EXISTS flashcards (
	id BIGSERIAL PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	category TEXT DEFAULT '',
	difficulty TEXT DEFAULT '',
	created_at TEXT NOT NULL
);`,
	}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps flashcards in a single SQL table, one row per card in
// insertion order.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

// OpenSQLite opens (creating if needed) a sqlite database file.
func OpenSQLite(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open(sqliteDialect.driver, sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect, logger)
}

// OpenPostgres connects to Postgres through pgx and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect, logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SQLStore{db: db, dialect: d, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if s.dialect.driver == sqliteDialect.driver {
		return s.ensureColumns(ctx)
	}
	return nil
}

// ensureColumns upgrades sqlite tables created before cards carried tags.
func (s *SQLStore) ensureColumns(ctx context.Context) error {
	required := map[string]string{
		"category":   "ALTER TABLE flashcards ADD COLUMN category TEXT DEFAULT '';",
		"difficulty": "ALTER TABLE flashcards ADD COLUMN difficulty TEXT DEFAULT '';",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(flashcards);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, alter); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) ListRows(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question, answer, category, difficulty FROM flashcards ORDER BY id;`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var question, answer string
		var category, difficulty sql.NullString
		if err := rows.Scan(&question, &answer, &category, &difficulty); err != nil {
			return nil, unavailable(err)
		}
		out = append(out, Row{
			"question":   question,
			"answer":     answer,
			"category":   category.String,
			"difficulty": difficulty.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (s *SQLStore) AppendRow(ctx context.Context, rec Record) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := s.dialect.rebind(`INSERT INTO flashcards (question, answer, category, difficulty, created_at) VALUES (?, ?, ?, ?, ?);`)
	if _, err := s.db.ExecContext(ctx, query, rec.Question, rec.Answer, rec.Category, rec.Difficulty, now); err != nil {
		s.logger.Warn("append row", zap.Error(err))
		return writeFailed(err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
