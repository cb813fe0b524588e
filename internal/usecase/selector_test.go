package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SitemapWatcher/internal/domain"
)

func makeFeeds(n int) []domain.Feed {
	feeds := make([]domain.Feed, n)
	for i := range feeds {
		feeds[i] = domain.Feed{URL: fmt.Sprintf("https://site%d.test/sitemap.xml", i)}
	}
	return feeds
}

func TestSelectBatchEmptyList(t *testing.T) {
	sel := SelectBatch(nil, domain.Progress{LastIndex: 3}, 5)

	assert.Empty(t, sel.Feeds)
	assert.Equal(t, 0, sel.NextIndex)
}

func TestSelectBatchStaleCursorResets(t *testing.T) {
	feeds := makeFeeds(4)

	tests := []struct {
		name      string
		lastIndex int
	}{
		{name: "index at length", lastIndex: 4},
		{name: "index beyond length", lastIndex: 17},
		{name: "negative index", lastIndex: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectBatch(feeds, domain.Progress{LastIndex: tt.lastIndex}, 2)

			assert.Equal(t, 0, sel.StartIndex)
			assert.Equal(t, feeds[0:2], sel.Feeds)
			assert.Equal(t, 2, sel.NextIndex)
		})
	}
}

func TestSelectBatchLargerThanList(t *testing.T) {
	feeds := makeFeeds(3)

	sel := SelectBatch(feeds, domain.Progress{}, 10)

	assert.Len(t, sel.Feeds, 3)
	assert.Equal(t, 0, sel.NextIndex, "a full sweep wraps immediately")
}

func TestSelectBatchWrapsAtTail(t *testing.T) {
	feeds := makeFeeds(5)

	sel := SelectBatch(feeds, domain.Progress{LastIndex: 4}, 2)

	assert.Equal(t, feeds[4:5], sel.Feeds)
	assert.Equal(t, 0, sel.NextIndex)
}

// Repeated selections starting from index 0 must visit every index
// exactly once per full cycle, for any list length and batch size.
func TestSelectBatchFullCycleVisitsEveryFeedOnce(t *testing.T) {
	for _, listLen := range []int{1, 2, 3, 5, 8, 17} {
		for _, batchSize := range []int{1, 2, 3, 7, 17, 30} {
			t.Run(fmt.Sprintf("len=%d batch=%d", listLen, batchSize), func(t *testing.T) {
				feeds := makeFeeds(listLen)
				visits := make([]int, listLen)

				cursor := domain.Progress{}
				for pass := 0; ; pass++ {
					require.Less(t, pass, listLen+1, "cycle did not terminate")

					sel := SelectBatch(feeds, cursor, batchSize)
					require.NotEmpty(t, sel.Feeds)
					for i := range sel.Feeds {
						visits[sel.StartIndex+i]++
					}

					cursor.LastIndex = sel.NextIndex
					if sel.NextIndex == 0 {
						break
					}
				}

				for i, count := range visits {
					assert.Equal(t, 1, count, "feed %d visit count", i)
				}
			})
		}
	}
}
