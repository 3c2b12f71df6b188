package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/chat-gateway/internal/utils/platformerrors"
)

func intPtr(v int) *int { return &v }

func TestBlocked(t *testing.T) {
	tests := []struct {
		name      string
		remaining *int
		want      bool
	}{
		{name: "queries left", remaining: intPtr(5), want: false},
		{name: "exhausted", remaining: intPtr(0), want: true},
		{name: "unlimited sentinel", remaining: intPtr(-1), want: false},
		{name: "unknown", remaining: nil, want: false},
		{name: "overdrawn", remaining: intPtr(-3), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Blocked(tt.remaining))
		})
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	snap  Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) FetchUsage(_ context.Context, _ string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Snapshot{}, f.err
	}
	return f.snap, nil
}

func (f *fakeFetcher) set(snap Snapshot, err error) {
	f.mu.Lock()
	f.snap = snap
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestServiceCurrentCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{snap: Snapshot{UsedToday: 3, Remaining: intPtr(7), Tier: TierFree}}
	svc := NewService(fetcher, time.Minute)

	first, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, first.UsedToday)

	_, err = svc.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestServiceCurrentServesStaleOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{snap: Snapshot{Remaining: intPtr(2), Tier: TierFree}}
	svc := NewService(fetcher, -time.Second)

	_, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)

	fetcher.set(Snapshot{}, errors.New("backend down"))
	snap, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, *snap.Remaining)
}

func TestServiceCurrentErrorsWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("backend down")}
	svc := NewService(fetcher, time.Minute)

	_, err := svc.Current(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestServiceCheckAllowed(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks at zero remaining", func(t *testing.T) {
		fetcher := &fakeFetcher{snap: Snapshot{Remaining: intPtr(0), Tier: TierFree}}
		svc := NewService(fetcher, time.Minute)

		err := svc.CheckAllowed(ctx, "user-1")
		require.Error(t, err)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited))
	})

	t.Run("allows unlimited tier", func(t *testing.T) {
		fetcher := &fakeFetcher{snap: Snapshot{Remaining: intPtr(UnlimitedSentinel), Tier: TierUnlimited}}
		svc := NewService(fetcher, time.Minute)
		assert.NoError(t, svc.CheckAllowed(ctx, "user-1"))
	})

	t.Run("fails open on backend failure", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("backend down")}
		svc := NewService(fetcher, time.Minute)
		assert.NoError(t, svc.CheckAllowed(ctx, "user-1"))
	})
}

func TestServiceInvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{snap: Snapshot{Remaining: intPtr(5), Tier: TierFree}}
	svc := NewService(fetcher, time.Minute)

	_, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)
	svc.Invalidate("user-1")

	fetcher.set(Snapshot{Remaining: intPtr(4), Tier: TierFree}, nil)
	snap, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, *snap.Remaining)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestServiceRefreshAllUpdatesCachedIdentities(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{snap: Snapshot{Remaining: intPtr(5), Tier: TierFree}}
	svc := NewService(fetcher, time.Minute)

	_, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)

	fetcher.set(Snapshot{Remaining: intPtr(1), Tier: TierFree}, nil)
	svc.RefreshAll(ctx)

	snap, err := svc.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, *snap.Remaining)
}