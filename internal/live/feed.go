package live

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jamcast/jamcast/internal/domain"
)

// recentWindow bounds what the read side of the feed reports. Events older
// than this stay in storage until capacity eviction removes them.
const recentWindow = 24 * time.Hour

// activityFeed is a bounded most-recent-first log of playback activity.
// Sessions do not own activities; the feed is an independent store.
type activityFeed struct {
	clock     clockwork.Clock
	max       int
	maxRecent int
	entries   []domain.Activity
}

func newActivityFeed(clock clockwork.Clock, max, maxRecent int) *activityFeed {
	return &activityFeed{clock: clock, max: max, maxRecent: maxRecent}
}

// record prepends an event and truncates the log from the tail once the
// storage cap is exceeded.
func (f *activityFeed) record(a domain.Activity) {
	f.entries = append([]domain.Activity{a}, f.entries...)
	if len(f.entries) > f.max {
		f.entries = f.entries[:f.max]
	}
}

// recent returns events newer than the recency window, most recent first,
// capped at the read limit.
func (f *activityFeed) recent() []domain.Activity {
	cutoff := f.clock.Now().Add(-recentWindow).UnixMilli()
	out := make([]domain.Activity, 0, f.maxRecent)
	for _, a := range f.entries {
		if a.Timestamp <= cutoff {
			continue
		}
		out = append(out, a)
		if len(out) == f.maxRecent {
			break
		}
	}
	return out
}

// total reports how many events are retained, expired or not.
func (f *activityFeed) total() int {
	return len(f.entries)
}
