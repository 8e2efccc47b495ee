package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	ferrors "github.com/matzehuels/floorcad/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id         TEXT NOT NULL,
	format     TEXT NOT NULL,
	data       BLOB NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (id, format)
)`

// SQLiteStore keeps artifacts in a single SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, ferrors.New(ferrors.ErrCodeInvalidConfig, "sqlite store requires a database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, sinkFailure(err, "create database directory")
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, sinkFailure(err, "open sqlite database %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, sinkFailure(err, "apply sqlite schema")
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, a *Artifact) error {
	if err := validateArtifact(a); err != nil {
		return err
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, format, data, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id, format) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		a.ID, a.Format, a.Data, created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return sinkFailure(err, "store %s artifact for drawing %q", a.Format, a.ID)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id, format string) (*Artifact, error) {
	if err := validateKey(id, format); err != nil {
		return nil, err
	}
	a := &Artifact{ID: id, Format: format}
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, created_at FROM artifacts WHERE id = ? AND format = ?`, id, format,
	).Scan(&a.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id, format)
	}
	if err != nil {
		return nil, sinkFailure(err, "load %s artifact for drawing %q", format, id)
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, sinkFailure(err, "parse created_at of drawing %q", id)
	}
	return a, nil
}

func (s *SQLiteStore) List(ctx context.Context, id string) ([]string, error) {
	if err := ferrors.ValidateDrawingID(id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT format FROM artifacts WHERE id = ? ORDER BY format`, id)
	if err != nil {
		return nil, sinkFailure(err, "list artifacts for drawing %q", id)
	}
	defer rows.Close()

	formats := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, sinkFailure(err, "list artifacts for drawing %q", id)
		}
		formats = append(formats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, sinkFailure(err, "list artifacts for drawing %q", id)
	}
	return formats, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := ferrors.ValidateDrawingID(id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id); err != nil {
		return sinkFailure(err, "delete drawing %q", id)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
