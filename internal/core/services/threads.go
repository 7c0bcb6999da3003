package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driving"
)

// Ensure ThreadService implements the interface.
var _ driving.ThreadService = (*ThreadService)(nil)

// ThreadService exposes the conversation read/delete surface.
type ThreadService struct {
	store driven.ThreadStore
}

// NewThreadService creates a new thread service.
func NewThreadService(store driven.ThreadStore) *ThreadService {
	return &ThreadService{store: store}
}

// Get returns the full ordered message history of a thread.
func (s *ThreadService) Get(ctx context.Context, threadID string) (*domain.Thread, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, fmt.Errorf("%w: empty thread id", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, threadID)
}

// List returns summaries of all threads, newest first.
func (s *ThreadService) List(ctx context.Context) ([]domain.ThreadSummary, error) {
	return s.store.List(ctx)
}

// Delete removes a thread. Returns false if it did not exist.
func (s *ThreadService) Delete(ctx context.Context, threadID string) (bool, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return false, fmt.Errorf("%w: empty thread id", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, threadID)
}
