package usage

import "time"

// UnlimitedSentinel marks a remaining-query count that never blocks.
// Backends report it for tiers without a daily cap.
const UnlimitedSentinel = -1

// Tier is the backend-reported subscription tier. Unknown tiers are passed
// through untouched; only display code special-cases the known ones.
type Tier string

const (
	TierFree      Tier = "FREE"
	TierPro       Tier = "PRO"
	TierUnlimited Tier = "UNLIMITED"
)

// Snapshot is one identity's usage standing at a point in time. Limit and
// Remaining are nil when the backend omitted them.
type Snapshot struct {
	UsedToday int       `json:"queriesToday"`
	Limit     *int      `json:"queryLimit,omitempty"`
	Remaining *int      `json:"remaining,omitempty"`
	Tier      Tier      `json:"tier"`
	FetchedAt time.Time `json:"-"`
}

// Blocked reports whether a remaining count denies further queries. Absent
// counts and the unlimited sentinel never block; zero or negative counts do.
func Blocked(remaining *int) bool {
	if remaining == nil {
		return false
	}
	if *remaining == UnlimitedSentinel {
		return false
	}
	return *remaining <= 0
}

// Blocked on a snapshot delegates to the remaining count.
func (s Snapshot) Blocked() bool {
	return Blocked(s.Remaining)
}
