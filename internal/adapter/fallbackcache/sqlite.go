// Package fallbackcache stores downgraded remote writes in a local
// SQLite database so nothing is silently dropped while the record
// store is unreachable.
package fallbackcache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/eslsoft/quizwhiz/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cache_entries_lookup
    ON cache_entries (user_id, kind, id DESC);
`

// Per-kind retention caps. Insertion beyond a cap evicts the oldest
// entries for that (user, kind). Zero means unbounded.
var kindCaps = map[entity.EntityKind]int{
	entity.KindProgress:    100,
	entity.KindReview:      50,
	entity.KindQuizSummary: 50,
}

// Store is the SQLite-backed fallback cache.
type Store struct {
	db *sql.DB
}

// Open creates the cache database at path, applying the schema if
// needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open fallback cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect fallback cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply fallback cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts an entry for (entry.UserID, entry.Kind) and evicts
// the oldest entries beyond the kind's cap. Re-appending an
// achievement with an already-cached title is a no-op.
func (s *Store) Append(ctx context.Context, entry entity.CacheEntry) error {
	if entry.Kind == entity.KindAchievement && entry.Title != "" {
		var n int
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(1) FROM cache_entries
			WHERE user_id = ? AND kind = ? AND title = ?
		`, entry.UserID, entry.Kind, entry.Title).Scan(&n)
		if err != nil {
			return fmt.Errorf("check cached achievement %q: %w", entry.Title, err)
		}
		if n > 0 {
			return nil
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (user_id, kind, title, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.UserID, entry.Kind, entry.Title, string(entry.Payload), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append %s cache entry: %w", entry.Kind, err)
	}

	if limit := kindCaps[entry.Kind]; limit > 0 {
		if err := s.evict(ctx, entry.UserID, entry.Kind, limit); err != nil {
			return err
		}
	}
	return nil
}

// List returns the cached entries for (userID, kind), newest first.
func (s *Store) List(ctx context.Context, userID int64, kind entity.EntityKind) ([]entity.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, kind, title, payload, created_at
		FROM cache_entries
		WHERE user_id = ? AND kind = ?
		ORDER BY id DESC
	`, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s cache entries: %w", kind, err)
	}
	defer rows.Close()

	var entries []entity.CacheEntry
	for rows.Next() {
		var (
			e       entity.CacheEntry
			payload string
		)
		if err := rows.Scan(&e.UserID, &e.Kind, &e.Title, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		e.Payload = []byte(payload)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) evict(ctx context.Context, userID int64, kind entity.EntityKind, limit int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries
		WHERE user_id = ? AND kind = ? AND id NOT IN (
			SELECT id FROM cache_entries
			WHERE user_id = ? AND kind = ?
			ORDER BY id DESC LIMIT ?
		)
	`, userID, kind, userID, kind, limit)
	if err != nil {
		return fmt.Errorf("evict %s cache entries: %w", kind, err)
	}
	return nil
}
