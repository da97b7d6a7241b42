// Package prefs persists per-view display preferences in a local
// sqlite database. Preferences survive restarts; losing them is
// cosmetic, so reads degrade to defaults instead of failing the UI.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kettle/taskdeck/internal/record"
)

const (
	schemaVersion  = 1
	schemaChecksum = "td-v1-2026-08-20-view-state"
)

type Store struct {
	db *sql.DB
}

func DefaultDBPath(homeDir string) string {
	return filepath.Join(homeDir, "taskdeck.db")
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.configurePragmas(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) configurePragmas(ctx context.Context) error {
	pragma := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, q := range pragma {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("set pragma %q: %w", q, err)
		}
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var maxVersion int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&maxVersion); err != nil {
		return fmt.Errorf("read migration max version: %w", err)
	}
	if maxVersion > schemaVersion {
		return fmt.Errorf("db schema version %d is newer than supported %d", maxVersion, schemaVersion)
	}
	if maxVersion == schemaVersion {
		var existingChecksum string
		if err := tx.QueryRowContext(ctx, `SELECT checksum FROM schema_migrations WHERE version = ?;`, schemaVersion).Scan(&existingChecksum); err != nil {
			return fmt.Errorf("read schema migration checksum: %w", err)
		}
		if existingChecksum != schemaChecksum {
			return fmt.Errorf("schema checksum mismatch for version %d: got %q want %q", schemaVersion, existingChecksum, schemaChecksum)
		}
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS view_state (
			view_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		return fmt.Errorf("create view_state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO schema_migrations (version, checksum)
		VALUES (?, ?);
	`, schemaVersion, schemaChecksum); err != nil {
		return fmt.Errorf("insert schema migration ledger: %w", err)
	}
	return tx.Commit()
}

// retryOnBusy retries f when sqlite returns BUSY or LOCKED, with
// exponential backoff and bounded jitter on top of the driver's
// busy_timeout.
func retryOnBusy(ctx context.Context, maxRetries int, f func() error) error {
	const baseDelay = 50 * time.Millisecond
	const maxDelay = 500 * time.Millisecond

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = f()
		if err == nil {
			return nil
		}
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt == maxRetries {
			return err
		}
		delay := baseDelay << uint(attempt)
		if delay > maxDelay {
			delay = maxDelay
		}
		jitter := time.Duration(rand.Intn(int(delay / 2)))
		delay = delay - delay/4 + jitter

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "(5)") || // SQLITE_BUSY
		strings.Contains(msg, "(6)") // SQLITE_LOCKED
}

// Load returns the stored state for a view. A missing row or an
// unreadable blob yields the empty state: stale preferences must
// never block rendering.
func (s *Store) Load(ctx context.Context, viewID record.ViewIdentity) (State, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM view_state WHERE view_id = ?;
	`, string(viewID)).Scan(&blob)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return NewState(), nil
	case err != nil:
		return NewState(), fmt.Errorf("load view state: %w", err)
	}
	return ParseState([]byte(blob)), nil
}

// Save replaces the stored state for a view. Last write wins.
func (s *Store) Save(ctx context.Context, viewID record.ViewIdentity, st State) error {
	blob, err := st.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	return retryOnBusy(ctx, 5, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO view_state (view_id, state, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(view_id) DO UPDATE SET
				state = excluded.state,
				updated_at = excluded.updated_at;
		`, string(viewID), string(blob))
		if err != nil {
			return fmt.Errorf("save view state: %w", err)
		}
		return nil
	})
}

// Get returns one column's saved visibility choice. ok=false means no
// explicit choice was saved and the schema default applies.
func (s *Store) Get(ctx context.Context, viewID record.ViewIdentity, column string) (value, ok bool, err error) {
	st, err := s.Load(ctx, viewID)
	if err != nil {
		return false, false, err
	}
	value, ok = st.ColumnsVisible[column]
	return value, ok, nil
}

// Set saves one column's visibility choice, leaving the rest of the
// stored state untouched.
func (s *Store) Set(ctx context.Context, viewID record.ViewIdentity, column string, visible bool) error {
	st, err := s.Load(ctx, viewID)
	if err != nil {
		return err
	}
	st.ColumnsVisible[column] = visible
	return s.Save(ctx, viewID, st)
}

// Delete removes a view's stored state.
func (s *Store) Delete(ctx context.Context, viewID record.ViewIdentity) error {
	return retryOnBusy(ctx, 5, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM view_state WHERE view_id = ?;`, string(viewID))
		if err != nil {
			return fmt.Errorf("delete view state: %w", err)
		}
		return nil
	})
}
