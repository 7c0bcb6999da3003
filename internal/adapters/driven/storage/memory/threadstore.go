// Package memory provides in-memory store implementations, used in
// tests and anywhere persistence is not wanted.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is an in-memory implementation of driven.ThreadStore.
type ThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*domain.Thread
}

// NewThreadStore creates a new in-memory thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{
		threads: make(map[string]*domain.Thread),
	}
}

// Get retrieves a thread with its full message history.
func (s *ThreadStore) Get(_ context.Context, threadID string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[threadID]
	if !ok {
		return nil, domain.ErrThreadNotFound
	}

	// Copy so callers cannot mutate stored state.
	out := *thread
	out.Messages = append([]domain.Message(nil), thread.Messages...)
	return &out, nil
}

// Append adds a user/assistant message pair, creating the thread on
// first use.
func (s *ThreadStore) Append(_ context.Context, threadID, title string, user, assistant domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[threadID]
	if !ok {
		thread = &domain.Thread{
			ID:        threadID,
			Title:     title,
			CreatedAt: time.Now().UTC(),
		}
		s.threads[threadID] = thread
	}

	thread.Messages = append(thread.Messages, user, assistant)
	return nil
}

// List returns summaries of all threads, newest first.
func (s *ThreadStore) List(_ context.Context) ([]domain.ThreadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.ThreadSummary, 0, len(s.threads))
	for _, thread := range s.threads {
		summaries = append(summaries, domain.ThreadSummary{
			ID:           thread.ID,
			Title:        thread.Title,
			CreatedAt:    thread.CreatedAt,
			MessageCount: len(thread.Messages),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Delete removes a thread and its messages.
func (s *ThreadStore) Delete(_ context.Context, threadID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[threadID]; !ok {
		return false, nil
	}
	delete(s.threads, threadID)
	return true, nil
}

// Close releases resources.
func (s *ThreadStore) Close() error {
	return nil
}
