package driving

import (
	"context"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// QueryService answers questions against the indexed corpus.
//
// Both entry points always return a QueryResult: retrieval failures
// collapse to an empty context, generation failures to an in-band error
// answer. The only hard errors are structural ones raised before the
// pipeline runs (token budget, invalid filter).
type QueryService interface {
	// Query runs the two-stage retrieve-then-generate pipeline for one
	// turn of the given thread. An empty threadID starts a new thread.
	Query(ctx context.Context, threadID, query string, opts domain.QueryOptions) (*domain.QueryResult, error)

	// QueryWithHistory reformulates a follow-up question into a
	// standalone one using recent turns, then runs Query. Reformulation
	// failure falls back to the original question.
	QueryWithHistory(ctx context.Context, threadID, query string, opts domain.QueryOptions) (*domain.QueryResult, error)
}

// ThreadService exposes the conversation read/delete surface.
type ThreadService interface {
	// Get returns the full ordered message history of a thread.
	Get(ctx context.Context, threadID string) (*domain.Thread, error)

	// List returns summaries of all threads.
	List(ctx context.Context) ([]domain.ThreadSummary, error)

	// Delete removes a thread. Returns false if it did not exist.
	Delete(ctx context.Context, threadID string) (bool, error)
}
