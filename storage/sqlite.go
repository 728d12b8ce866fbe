package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/veligo/galleria/gallery"
)

var _ Storage = (*SQLiteStorage)(nil)

// SQLiteStorage is a [Storage] that stores images as blobs in a SQLite
// database, keyed by their storage path.
type SQLiteStorage struct {
	db *sql.DB

	// modernc.org/sqlite does not support concurrent writes.
	writeLock sync.Mutex
}

// NewSQLiteStorage opens (or creates) the database at the given path and
// initializes the schema.
func NewSQLiteStorage(databasePath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS images (
			path       TEXT PRIMARY KEY,
			contents   BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Put implements [Storage].
func (s *SQLiteStorage) Put(ctx context.Context, p string, contents io.Reader) (gallery.Locator, error) {
	b, err := io.ReadAll(contents)
	if err != nil {
		return "", fmt.Errorf("read contents: %w", err)
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO images (path, contents) VALUES (?, ?)
		ON CONFLICT (path) DO UPDATE SET contents = excluded.contents
	`, p, b); err != nil {
		return "", fmt.Errorf("insert image: %w", err)
	}

	return gallery.Locator("sqlite://" + p), nil
}

// Get implements [Storage].
func (s *SQLiteStorage) Get(ctx context.Context, p string) (io.Reader, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, "SELECT contents FROM images WHERE path = ?", p).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("image %q not found in sqlite storage", p)
	}
	if err != nil {
		return nil, fmt.Errorf("query image: %w", err)
	}

	return bytes.NewReader(b), nil
}
