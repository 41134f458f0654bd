// internal/content/sqlstore.go
//
// SQL-backed content store.
//
// Context
// -------
// Sites that keep their articles in a database instead of a git checkout
// use one table holding the full source (front matter + body) per row:
//
//	CREATE TABLE content_document (
//	    locale       VARCHAR(16)  NOT NULL,
//	    content_key  VARCHAR(191) NOT NULL,
//	    source       MEDIUMTEXT   NOT NULL,
//	    PRIMARY KEY (locale, content_key)
//	);
//
// The store is driver-neutral: “?” placeholders work for MySQL and SQLite,
// the two drivers internal/database registers.
//
// Notes
// -----
// • Rows are read fresh on every call; nothing is cached here.
// • Oxford commas, two spaces after periods.

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema creates the content table.  Portable across MySQL and SQLite.
const Schema = `CREATE TABLE IF NOT EXISTS content_document (
    locale       VARCHAR(16)  NOT NULL,
    content_key  VARCHAR(191) NOT NULL,
    source       TEXT         NOT NULL,
    PRIMARY KEY (locale, content_key)
)`

// SQLStore implements Store over a sqlx pool.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps db.  The caller owns the pool.
func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

// Keys lists content keys for locale in lexical order.
func (s *SQLStore) Keys(ctx context.Context, locale string) ([]string, error) {
	const q = `SELECT content_key FROM content_document WHERE locale = ? ORDER BY content_key`
	keys := make([]string, 0, 32)
	if err := s.db.SelectContext(ctx, &keys, q, locale); err != nil {
		return nil, fmt.Errorf("list %s: %w", locale, err)
	}
	return keys, nil
}

// Read returns the stored source for locale/key.
func (s *SQLStore) Read(ctx context.Context, locale, key string) ([]byte, error) {
	const q = `SELECT source FROM content_document WHERE locale = ? AND content_key = ? LIMIT 1`
	var src string
	if err := s.db.GetContext(ctx, &src, q, locale, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, locale, key)
		}
		return nil, fmt.Errorf("read %s/%s: %w", locale, key, err)
	}
	return []byte(src), nil
}

// Put inserts or replaces one document.  Used by import tooling and tests.
func (s *SQLStore) Put(ctx context.Context, locale, key string, src []byte) error {
	const del = `DELETE FROM content_document WHERE locale = ? AND content_key = ?`
	const ins = `INSERT INTO content_document (locale, content_key, source) VALUES (?, ?, ?)`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, del, locale, key); err != nil {
		return fmt.Errorf("put %s/%s: %w", locale, key, err)
	}
	if _, err := tx.ExecContext(ctx, ins, locale, key, string(src)); err != nil {
		return fmt.Errorf("put %s/%s: %w", locale, key, err)
	}
	return tx.Commit()
}
