package usage

import (
	"context"
	"sync"
	"time"

	"docchat/chat-gateway/internal/infrastructure/logger"
	"docchat/chat-gateway/internal/infrastructure/metrics"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// Fetcher retrieves an identity's current usage standing from the backend.
type Fetcher interface {
	FetchUsage(ctx context.Context, callerID string) (Snapshot, error)
}

// Service caches per-identity usage snapshots and answers the pre-query
// gate. Snapshots refresh on demand when older than ttl and in bulk from
// the scheduler. A backend that cannot be reached fails open: limits are
// an upstream concern and the backend re-checks on every query anyway.
type Service struct {
	fetcher Fetcher
	ttl     time.Duration

	mu    sync.Mutex
	cache map[string]Snapshot
}

func NewService(fetcher Fetcher, ttl time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		ttl:     ttl,
		cache:   make(map[string]Snapshot),
	}
}

// Current returns the identity's usage snapshot, refreshing it when the
// cached one has expired. A fetch failure with a cached snapshot on hand
// serves the stale snapshot.
func (s *Service) Current(ctx context.Context, callerID string) (Snapshot, error) {
	s.mu.Lock()
	cached, ok := s.cache[callerID]
	s.mu.Unlock()
	if ok && time.Since(cached.FetchedAt) < s.ttl {
		return cached, nil
	}

	snap, err := s.refresh(ctx, callerID)
	if err != nil {
		if ok {
			return cached, nil
		}
		return Snapshot{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "usage lookup failed", err, "")
	}
	return snap, nil
}

// CheckAllowed gates a query. It returns a RateLimited error when the
// identity's remaining count blocks, and nil when the count allows or the
// backend could not be consulted.
func (s *Service) CheckAllowed(ctx context.Context, callerID string) error {
	snap, err := s.Current(ctx, callerID)
	if err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Str("caller_id", callerID).Msg("usage gate failing open")
		return nil
	}
	if snap.Blocked() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRateLimited, "Daily limit reached", nil, "")
	}
	return nil
}

// Invalidate drops the cached snapshot so the next gate check refetches.
// Called after each relayed query since the backend counts it.
func (s *Service) Invalidate(callerID string) {
	s.mu.Lock()
	delete(s.cache, callerID)
	s.mu.Unlock()
}

// RefreshAll refetches every cached identity. Driven by the scheduler so
// interactive requests rarely pay the fetch.
func (s *Service) RefreshAll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.cache))
	for id := range s.cache {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if _, err := s.refresh(ctx, id); err != nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Str("caller_id", id).Msg("scheduled usage refresh failed")
		}
	}
}

func (s *Service) refresh(ctx context.Context, callerID string) (Snapshot, error) {
	snap, err := s.fetcher.FetchUsage(ctx, callerID)
	if err != nil {
		metrics.UsageRefreshTotal.WithLabelValues("error").Inc()
		return Snapshot{}, err
	}
	snap.FetchedAt = time.Now()
	s.mu.Lock()
	s.cache[callerID] = snap
	s.mu.Unlock()
	metrics.UsageRefreshTotal.WithLabelValues("success").Inc()
	return snap, nil
}
