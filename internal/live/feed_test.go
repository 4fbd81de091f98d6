package live

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamcast/jamcast/internal/domain"
)

func makeActivity(clock clockwork.Clock, id string) domain.Activity {
	return domain.Activity{
		ID:        id,
		Username:  "alice",
		Song:      domain.Song{ID: "s-" + id, Title: "Song " + id, Artist: "Band"},
		Action:    domain.ActionPlay,
		Timestamp: clock.Now().UnixMilli(),
	}
}

func TestFeedReturnsMostRecentFirst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	feed := newActivityFeed(clock, 10, 5)

	for i := 0; i < 3; i++ {
		feed.record(makeActivity(clock, fmt.Sprintf("a%d", i)))
		clock.Advance(time.Second)
	}

	recent := feed.recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "a2", recent[0].ID)
	assert.Equal(t, "a1", recent[1].ID)
	assert.Equal(t, "a0", recent[2].ID)
}

func TestFeedEvictsOldestBeyondStorageCap(t *testing.T) {
	clock := clockwork.NewFakeClock()
	feed := newActivityFeed(clock, 3, 3)

	for i := 0; i < 5; i++ {
		feed.record(makeActivity(clock, fmt.Sprintf("a%d", i)))
	}

	assert.Equal(t, 3, feed.total())
	recent := feed.recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "a4", recent[0].ID)
	assert.Equal(t, "a2", recent[2].ID)
}

func TestFeedRecentCapIsSeparateFromStorageCap(t *testing.T) {
	clock := clockwork.NewFakeClock()
	feed := newActivityFeed(clock, 10, 2)

	for i := 0; i < 5; i++ {
		feed.record(makeActivity(clock, fmt.Sprintf("a%d", i)))
	}

	assert.Equal(t, 5, feed.total())
	recent := feed.recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "a4", recent[0].ID)
	assert.Equal(t, "a3", recent[1].ID)
}

func TestFeedFiltersEventsOlderThanWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	feed := newActivityFeed(clock, 10, 5)

	feed.record(makeActivity(clock, "old"))
	clock.Advance(25 * time.Hour)
	feed.record(makeActivity(clock, "fresh"))

	recent := feed.recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh", recent[0].ID)

	// Expired events stay in storage until capacity evicts them.
	assert.Equal(t, 2, feed.total())
}
