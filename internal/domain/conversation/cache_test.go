package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/chat-gateway/internal/domain/chat"
)

// fakeDurable keeps convs newest-created first and never reorders them on
// rename or history update, mirroring the repository's created_at sort.
type fakeDurable struct {
	mu         sync.Mutex
	seq        int
	convs      []*Conversation
	failNext   bool
	listCalls  int
	writeCalls int
}

func (f *fakeDurable) Create(_ context.Context, ownerID, title string, history []chat.Message) (*Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.failNext {
		f.failNext = false
		return nil, errors.New("durable write rejected")
	}
	f.seq++
	conv := NewConversation(fmt.Sprintf("conv_fake%012d", f.seq), ownerID, title, history)
	f.convs = append([]*Conversation{conv}, f.convs...)
	return conv.Clone(), nil
}

func (f *fakeDurable) ListByOwner(_ context.Context, ownerID string) ([]*Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failNext {
		f.failNext = false
		return nil, errors.New("durable read rejected")
	}
	var out []*Conversation
	for _, conv := range f.convs {
		if conv.OwnerID == ownerID {
			out = append(out, conv.Clone())
		}
	}
	return out, nil
}

func (f *fakeDurable) Rename(_ context.Context, ownerID, publicID, newTitle string) (*Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, errors.New("durable write rejected")
	}
	for _, conv := range f.convs {
		if conv.OwnerID == ownerID && conv.PublicID == publicID {
			conv.Title = newTitle
			return conv.Clone(), nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeDurable) UpdateHistory(_ context.Context, ownerID, publicID string, history []chat.Message) (*Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.failNext {
		f.failNext = false
		return nil, errors.New("durable write rejected")
	}
	for _, conv := range f.convs {
		if conv.OwnerID == ownerID && conv.PublicID == publicID {
			conv.History = append([]chat.Message(nil), history...)
			return conv.Clone(), nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeDurable) Delete(_ context.Context, ownerID, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("durable write rejected")
	}
	kept := f.convs[:0]
	for _, conv := range f.convs {
		if conv.OwnerID != ownerID || conv.PublicID != publicID {
			kept = append(kept, conv)
		}
	}
	f.convs = kept
	return nil
}

func (f *fakeDurable) setFailNext() {
	f.mu.Lock()
	f.failNext = true
	f.mu.Unlock()
}

func (f *fakeDurable) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeDurable) writeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls
}

func seededDurable(t *testing.T, ownerID string, n int) *fakeDurable {
	t.Helper()
	f := &fakeDurable{}
	for i := 0; i < n; i++ {
		_, err := f.Create(context.Background(), ownerID, fmt.Sprintf("conversation %d", i), []chat.Message{
			{Role: chat.RoleUser, Text: fmt.Sprintf("question %d", i)},
			{Role: chat.RoleAssistant, Text: fmt.Sprintf("answer %d", i)},
		})
		require.NoError(t, err)
	}
	return f
}

func TestCacheListServesFromCacheWithinTTL(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 2)
	cache := NewCache(durable, time.Minute, time.Second)

	first, stale, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Len(t, first, 2)

	second, stale, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Len(t, second, 2)
	assert.Equal(t, 1, durable.listCallCount())
}

func TestCacheListReportsStaleAfterTTL(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 1)
	cache := NewCache(durable, -time.Second, time.Second)

	_, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)

	list, stale, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Len(t, list, 1)
}

func TestCacheListReturnsUnavailableWhenStoreDown(t *testing.T) {
	ctx := context.Background()
	durable := &fakeDurable{}
	durable.setFailNext()
	cache := NewCache(durable, time.Minute, time.Second)

	_, stale, err := cache.List(ctx, "user-1")
	require.Error(t, err)
	assert.True(t, stale)
}

func TestCacheCreateInvalidatesOnSuccess(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 1)
	cache := NewCache(durable, time.Minute, time.Second)

	_, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)

	created, err := cache.Create(ctx, "user-1", "fresh start", []chat.Message{
		{Role: chat.RoleUser, Text: "hello"},
		{Role: chat.RoleAssistant, Text: "hi"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.PublicID)

	list, stale, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, list, 2)
	assert.Equal(t, created.PublicID, list[0].PublicID, "new conversation should lead the list")
}

func TestCacheListOrderSurvivesHistoryUpdate(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 3)
	cache := NewCache(durable, time.Minute, time.Second)

	before, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	oldest := before[len(before)-1]

	require.NoError(t, cache.UpdateHistory(ctx, "user-1", oldest.PublicID, []chat.Message{
		{Role: chat.RoleUser, Text: "question 0"},
		{Role: chat.RoleAssistant, Text: "answer 0"},
		{Role: chat.RoleUser, Text: "a follow-up"},
		{Role: chat.RoleAssistant, Text: "a longer answer"},
	}))

	after, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Greater(t, durable.listCallCount(), 1, "mutation must force a refetch")
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].PublicID, after[i].PublicID, "only creation may reorder the list")
	}
	assert.Len(t, after[len(after)-1].History, 4)
}

func TestCacheMutationRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 3)
	cache := NewCache(durable, time.Minute, time.Second)

	before, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	callsBefore := durable.listCallCount()

	durable.setFailNext()
	err = cache.Rename(ctx, "user-1", before[1].PublicID, "new name")
	require.Error(t, err)

	after, stale, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, before, after, "rollback must restore the exact snapshot")
	assert.Equal(t, callsBefore, durable.listCallCount(), "restored entry should still be fresh")
}

func TestCacheCreateRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 2)
	cache := NewCache(durable, time.Minute, time.Second)

	before, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)

	durable.setFailNext()
	_, err = cache.Create(ctx, "user-1", "doomed", []chat.Message{
		{Role: chat.RoleUser, Text: "hello"},
		{Role: chat.RoleAssistant, Text: "hi"},
	})
	require.Error(t, err)

	after, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCacheDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 2)
	cache := NewCache(durable, time.Minute, time.Second)

	before, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, cache.Delete(ctx, "user-1", before[0].PublicID))

	after, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[1].PublicID, after[0].PublicID)
}

func TestCacheIsolatesOwners(t *testing.T) {
	ctx := context.Background()
	durable := seededDurable(t, "user-1", 2)
	_, err := durable.Create(ctx, "user-2", "other owner", []chat.Message{
		{Role: chat.RoleUser, Text: "hello"},
		{Role: chat.RoleAssistant, Text: "hi"},
	})
	require.NoError(t, err)
	cache := NewCache(durable, time.Minute, time.Second)

	one, _, err := cache.List(ctx, "user-1")
	require.NoError(t, err)
	two, _, err := cache.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, one, 2)
	assert.Len(t, two, 1)
}
