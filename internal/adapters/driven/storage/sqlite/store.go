// Package sqlite persists conversation threads in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragline-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Ensure Store implements the interface.
var _ driven.ThreadStore = (*Store)(nil)

// Store is a SQLite-backed thread store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a thread store in the given data directory. If
// dataDir is empty, defaults to ~/.ragline/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragline", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "threads.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Get retrieves a thread with its full message history.
func (s *Store) Get(ctx context.Context, threadID string) (*domain.Thread, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM threads WHERE id = ?", threadID)

	var thread domain.Thread
	if err := row.Scan(&thread.ID, &thread.Title, &thread.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrThreadNotFound
		}
		return nil, fmt.Errorf("%w: scanning thread: %w", domain.ErrStoreRead, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, token_count, retrieved, processing_ms, created_at
		FROM messages WHERE thread_id = ? ORDER BY id
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading messages: %w", domain.ErrStoreRead, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg           domain.Message
			role          string
			retrievedJSON string
			processingMS  int64
		)
		if err := rows.Scan(&role, &msg.Content, &msg.TokenCount, &retrievedJSON, &processingMS, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scanning message: %w", domain.ErrStoreRead, err)
		}
		msg.Role = domain.Role(role)
		msg.ProcessingTime = time.Duration(processingMS) * time.Millisecond

		if retrievedJSON != jsonNull {
			if err := json.Unmarshal([]byte(retrievedJSON), &msg.RetrievedChunks); err != nil {
				return nil, fmt.Errorf("%w: decoding retrieval snapshot: %w", domain.ErrStoreRead, err)
			}
		}
		thread.Messages = append(thread.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating messages: %w", domain.ErrStoreRead, err)
	}

	return &thread, nil
}

// Append adds a user/assistant message pair, creating the thread on
// first use. The pair is written in one transaction so a thread never
// ends on an unanswered user message.
func (s *Store) Append(ctx context.Context, threadID, title string, user, assistant domain.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO threads (id, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, threadID, title, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: upserting thread: %w", domain.ErrStoreWrite, err)
	}

	for _, msg := range []domain.Message{user, assistant} {
		retrievedJSON := jsonNull
		if msg.RetrievedChunks != nil {
			encoded, err := json.Marshal(msg.RetrievedChunks)
			if err != nil {
				return fmt.Errorf("%w: encoding retrieval snapshot: %w", domain.ErrStoreWrite, err)
			}
			retrievedJSON = string(encoded)
		}

		timestamp := msg.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (thread_id, role, content, token_count, retrieved, processing_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, threadID, string(msg.Role), msg.Content, msg.TokenCount, retrievedJSON,
			msg.ProcessingTime.Milliseconds(), timestamp)
		if err != nil {
			return fmt.Errorf("%w: inserting message: %w", domain.ErrStoreWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

// List returns summaries of all threads, newest first.
func (s *Store) List(ctx context.Context) ([]domain.ThreadSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.created_at, COUNT(m.id)
		FROM threads t
		LEFT JOIN messages m ON m.thread_id = t.id
		GROUP BY t.id
		ORDER BY t.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing threads: %w", domain.ErrStoreRead, err)
	}
	defer rows.Close()

	var summaries []domain.ThreadSummary
	for rows.Next() {
		var sum domain.ThreadSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.CreatedAt, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("%w: scanning summary: %w", domain.ErrStoreRead, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating summaries: %w", domain.ErrStoreRead, err)
	}
	return summaries, nil
}

// Delete removes a thread and its messages.
func (s *Store) Delete(ctx context.Context, threadID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM threads WHERE id = ?", threadID)
	if err != nil {
		return false, fmt.Errorf("%w: deleting thread: %w", domain.ErrStoreWrite, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: reading delete count: %w", domain.ErrStoreWrite, err)
	}
	return affected > 0, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
