package driven

import (
	"context"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// ThreadStore persists conversation threads and their ordered message
// history. Backed by SQLite; a memory implementation exists for tests.
//
// The store itself only guarantees that a single Append is applied
// atomically; per-thread serialization of concurrent appends is the
// thread service's job.
type ThreadStore interface {
	// Get retrieves a thread with its full message history.
	// Returns domain.ErrThreadNotFound if the id is unknown.
	Get(ctx context.Context, threadID string) (*domain.Thread, error)

	// Append adds a user/assistant message pair to a thread, creating
	// the thread on first use with the given title.
	Append(ctx context.Context, threadID, title string, user, assistant domain.Message) error

	// List returns summaries of all threads, newest first.
	List(ctx context.Context) ([]domain.ThreadSummary, error)

	// Delete removes a thread and its messages. Returns false if the
	// thread did not exist.
	Delete(ctx context.Context, threadID string) (bool, error)

	// Close releases resources.
	Close() error
}

// TokenCounter approximates the language-model token count of a text.
// The default implementation counts words; anything consistent will do,
// since the budget it feeds is itself approximate.
type TokenCounter interface {
	Count(text string) int
}
