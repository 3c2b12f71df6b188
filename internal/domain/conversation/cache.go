package conversation

import (
	"context"
	"sync"
	"time"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/infrastructure/logger"
	"docchat/chat-gateway/internal/infrastructure/metrics"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// Durable is the write-through boundary the cache synchronizes against.
// *Service satisfies it; tests substitute a fake.
type Durable interface {
	Create(ctx context.Context, ownerID, title string, history []chat.Message) (*Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Conversation, error)
	Rename(ctx context.Context, ownerID, publicID, newTitle string) (*Conversation, error)
	UpdateHistory(ctx context.Context, ownerID, publicID string, history []chat.Message) (*Conversation, error)
	Delete(ctx context.Context, ownerID, publicID string) error
}

var _ Durable = (*Service)(nil)

// Cache holds the authoritative per-identity conversation list on the
// serving side. Every mutation follows the same pattern: cancel any pending
// refresh, snapshot the cached list, apply the mutation optimistically,
// issue the durable write, then either roll the snapshot back on failure or
// invalidate the entry on success so the next read reconciles with the
// durable source of truth.
type Cache struct {
	durable      Durable
	ttl          time.Duration
	fetchTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	list          []*Conversation
	fetchedAt     time.Time
	refreshCancel context.CancelFunc
}

// snapshot captures enough state to restore an entry exactly.
type snapshot struct {
	hadEntry  bool
	list      []*Conversation
	fetchedAt time.Time
}

// NewCache creates a cache over a durable conversation store. ttl is the
// read freshness window; fetchTimeout bounds blocking reads so a slow store
// degrades to stale data instead of hanging.
func NewCache(durable Durable, ttl, fetchTimeout time.Duration) *Cache {
	return &Cache{
		durable:      durable,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		entries:      make(map[string]*cacheEntry),
	}
}

// List returns the owner's cached conversation list. The second return is
// true when the data is stale (a background refresh has been kicked off or
// the durable store was unreachable). The returned slice is a copy.
func (c *Cache) List(ctx context.Context, ownerID string) ([]*Conversation, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[ownerID]
	if ok {
		fresh := time.Since(entry.fetchedAt) < c.ttl
		list := cloneList(entry.list)
		if !fresh && entry.refreshCancel == nil {
			c.startRefreshLocked(ownerID)
		}
		c.mu.Unlock()
		return list, !fresh, nil
	}
	c.mu.Unlock()

	// No cached entry: block on the durable store, bounded.
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	list, err := c.durable.ListByOwner(fetchCtx, ownerID)
	if err != nil {
		return nil, true, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable, "conversation store unreachable", err, "")
	}

	c.mu.Lock()
	c.entries[ownerID] = &cacheEntry{list: cloneList(list), fetchedAt: time.Now()}
	c.mu.Unlock()
	return list, false, nil
}

// Create persists a new conversation and prepends it to the cached list
// (most-recent-first ordering).
func (c *Cache) Create(ctx context.Context, ownerID, title string, history []chat.Message) (*Conversation, error) {
	var created *Conversation
	provisional := NewConversation("", ownerID, title, history)

	err := c.mutate(ctx, ownerID,
		func(list []*Conversation) []*Conversation {
			return append([]*Conversation{provisional}, list...)
		},
		func(ctx context.Context) error {
			var err error
			created, err = c.durable.Create(ctx, ownerID, title, history)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Rename updates the display name of one cached record.
func (c *Cache) Rename(ctx context.Context, ownerID, publicID, newTitle string) error {
	return c.mutate(ctx, ownerID,
		func(list []*Conversation) []*Conversation {
			for _, conv := range list {
				if conv.PublicID == publicID {
					conv.Title = newTitle
				}
			}
			return list
		},
		func(ctx context.Context) error {
			_, err := c.durable.Rename(ctx, ownerID, publicID, newTitle)
			return err
		},
	)
}

// UpdateHistory replaces the stored history of one cached record.
func (c *Cache) UpdateHistory(ctx context.Context, ownerID, publicID string, history []chat.Message) error {
	return c.mutate(ctx, ownerID,
		func(list []*Conversation) []*Conversation {
			for _, conv := range list {
				if conv.PublicID == publicID {
					conv.History = append([]chat.Message(nil), history...)
				}
			}
			return list
		},
		func(ctx context.Context) error {
			_, err := c.durable.UpdateHistory(ctx, ownerID, publicID, history)
			return err
		},
	)
}

// Delete removes one record from the cache and the durable store.
func (c *Cache) Delete(ctx context.Context, ownerID, publicID string) error {
	return c.mutate(ctx, ownerID,
		func(list []*Conversation) []*Conversation {
			kept := list[:0]
			for _, conv := range list {
				if conv.PublicID != publicID {
					kept = append(kept, conv)
				}
			}
			return kept
		},
		func(ctx context.Context) error {
			return c.durable.Delete(ctx, ownerID, publicID)
		},
	)
}

// Invalidate drops the cached entry for an owner.
func (c *Cache) Invalidate(ownerID string) {
	c.mu.Lock()
	c.cancelRefreshLocked(ownerID)
	delete(c.entries, ownerID)
	c.mu.Unlock()
}

// mutate is the shared optimistic-mutation path: cancel pending refresh,
// snapshot, apply locally, write durably, roll back or invalidate. apply
// receives a private copy of the cached list and returns the new list.
func (c *Cache) mutate(ctx context.Context, ownerID string, apply func([]*Conversation) []*Conversation, write func(context.Context) error) error {
	c.mu.Lock()
	c.cancelRefreshLocked(ownerID)
	snap := c.snapshotLocked(ownerID)

	entry, ok := c.entries[ownerID]
	if !ok {
		entry = &cacheEntry{fetchedAt: time.Now()}
		c.entries[ownerID] = entry
	}
	entry.list = apply(cloneList(entry.list))
	c.mu.Unlock()

	if err := write(ctx); err != nil {
		c.mu.Lock()
		c.restoreLocked(ownerID, snap)
		c.mu.Unlock()
		metrics.CacheRollbacksTotal.Inc()
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation write failed")
	}

	c.mu.Lock()
	c.cancelRefreshLocked(ownerID)
	delete(c.entries, ownerID)
	c.mu.Unlock()
	return nil
}

func (c *Cache) snapshotLocked(ownerID string) snapshot {
	entry, ok := c.entries[ownerID]
	if !ok {
		return snapshot{}
	}
	return snapshot{hadEntry: true, list: cloneList(entry.list), fetchedAt: entry.fetchedAt}
}

func (c *Cache) restoreLocked(ownerID string, snap snapshot) {
	if !snap.hadEntry {
		delete(c.entries, ownerID)
		return
	}
	c.entries[ownerID] = &cacheEntry{list: snap.list, fetchedAt: snap.fetchedAt}
}

func (c *Cache) cancelRefreshLocked(ownerID string) {
	if entry, ok := c.entries[ownerID]; ok && entry.refreshCancel != nil {
		entry.refreshCancel()
		entry.refreshCancel = nil
	}
}

// startRefreshLocked refetches the owner's list in the background. A
// refresh that was cancelled by a mutation discards its result.
func (c *Cache) startRefreshLocked(ownerID string) {
	refreshCtx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	c.entries[ownerID].refreshCancel = cancel

	go func() {
		defer cancel()
		list, err := c.durable.ListByOwner(refreshCtx, ownerID)

		c.mu.Lock()
		defer c.mu.Unlock()
		entry, ok := c.entries[ownerID]
		if !ok || entry.refreshCancel == nil {
			// cancelled by a mutation; drop the result
			return
		}
		entry.refreshCancel = nil
		if err != nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Str("owner_id", ownerID).Msg("conversation refresh failed, serving stale list")
			return
		}
		entry.list = cloneList(list)
		entry.fetchedAt = time.Now()
	}()
}

func cloneList(list []*Conversation) []*Conversation {
	cloned := make([]*Conversation, len(list))
	for i, conv := range list {
		cloned[i] = conv.Clone()
	}
	return cloned
}
