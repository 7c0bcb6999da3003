package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

func TestThreadStore_AppendAndGet(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	user := domain.Message{Role: domain.RoleUser, Content: "q", TokenCount: 1}
	assistant := domain.Message{Role: domain.RoleAssistant, Content: "a", TokenCount: 1}
	require.NoError(t, store.Append(ctx, "t1", "q", user, assistant))

	thread, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "q", thread.Title)
	assert.Len(t, thread.Messages, 2)

	// Mutating the returned copy must not touch stored state.
	thread.Messages[0].Content = "mutated"
	again, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "q", again.Messages[0].Content)
}

func TestThreadStore_GetMissing(t *testing.T) {
	store := NewThreadStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrThreadNotFound)
}

func TestThreadStore_ListNewestFirst(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	msg := domain.Message{Role: domain.RoleUser, Content: "q"}
	require.NoError(t, store.Append(ctx, "older", "older", msg, msg))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.Append(ctx, "newer", "newer", msg, msg))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "newer", summaries[0].ID)
}

func TestThreadStore_Delete(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	msg := domain.Message{Role: domain.RoleUser, Content: "q"}
	require.NoError(t, store.Append(ctx, "t1", "q", msg, msg))

	deleted, err := store.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, deleted)
}
