package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore implements Store on SQLite or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	path    string
	entropy *ulid.MonotonicEntropy
}

// Open opens a store for the given dialect. For SQLite dsn is a file path,
// for PostgreSQL a connection URL.
func Open(dialect Dialect, dsn string) (*SQLStore, error) {
	switch dialect {
	case DialectSQLite, "":
		return NewSQLiteStore(dsn)
	case DialectPostgres:
		return NewPostgresStore(dsn)
	}
	return nil, fmt.Errorf("unknown driver %q (valid: sqlite, postgres)", dialect)
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newSQLStore(db, DialectSQLite, dbPath)
}

// NewPostgresStore connects to PostgreSQL through the pgx stdlib driver.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return newSQLStore(db, DialectPostgres, "")
}

func newSQLStore(db *sql.DB, dialect Dialect, path string) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		path:    path,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// isStoredID reports whether id was issued by the store. Anything else is a
// client placeholder and gets replaced on insert.
func isStoredID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		color_code  TEXT NOT NULL DEFAULT '',
		sort_order  INTEGER NOT NULL DEFAULT 0,
		is_active   BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id          TEXT PRIMARY KEY,
		word        TEXT NOT NULL,
		meaning     TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS units (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		sort_order   INTEGER NOT NULL,
		category_id  TEXT NOT NULL DEFAULT '',
		is_published BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_units_category ON units(category_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		id                 TEXT PRIMARY KEY,
		unit_id            TEXT NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		title              TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		sort_order         INTEGER NOT NULL,
		current_version_id TEXT,
		created_at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lessons_unit ON lessons(unit_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS lesson_versions (
		id             TEXT PRIMARY KEY,
		lesson_id      TEXT NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
		version_number INTEGER NOT NULL,
		status         TEXT NOT NULL DEFAULT 'draft',
		video_url      TEXT NOT NULL DEFAULT '',
		duration_sec   INTEGER NOT NULL DEFAULT 0 CHECK (duration_sec >= 0),
		difficulty     INTEGER NOT NULL DEFAULT 2,
		vocab_ids      TEXT NOT NULL DEFAULT '[]',
		created_at     TEXT NOT NULL,
		UNIQUE (lesson_id, version_number)
	)`,
	`CREATE TABLE IF NOT EXISTS checkpoints (
		id                TEXT PRIMARY KEY,
		lesson_version_id TEXT NOT NULL REFERENCES lesson_versions(id) ON DELETE CASCADE,
		time_sec          DOUBLE PRECISION NOT NULL CHECK (time_sec >= 0),
		position          INTEGER NOT NULL,
		type              TEXT NOT NULL,
		vocab_id          TEXT NOT NULL DEFAULT '',
		content           TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checkpoints_version ON checkpoints(lesson_version_id, time_sec)`,
}

func (s *SQLStore) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, q querier, query string, args ...interface{}) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, q querier, query string, args ...interface{}) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q querier, query string, args ...interface{}) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

// expectRow turns a zero-row update or delete into ErrNotFound.
func expectRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

// patchSet accumulates SET clauses for a partial update.
type patchSet struct {
	cols []string
	args []interface{}
}

func (p *patchSet) add(col string, v interface{}) {
	p.cols = append(p.cols, col+" = ?")
	p.args = append(p.args, v)
}

func (p *patchSet) empty() bool { return len(p.cols) == 0 }

func (s *SQLStore) applyPatch(ctx context.Context, q querier, table, id string, p patchSet) error {
	if p.empty() {
		var found string
		err := s.queryRow(ctx, q, `SELECT id FROM `+table+` WHERE id = ?`, id).Scan(&found)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
		}
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, strings.Join(p.cols, ", "))
	res, err := s.exec(ctx, q, query, append(p.args, id)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return expectRow(res, table, id)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

type scanner interface {
	Scan(dest ...interface{}) error
}
