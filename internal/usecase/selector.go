package usecase

import "SitemapWatcher/internal/domain"

// Selection is the contiguous slice of feeds chosen for one pass plus
// the cursor position the next pass should resume from.
type Selection struct {
	Feeds      []domain.Feed
	StartIndex int
	NextIndex  int
}

// SelectBatch computes the slice to process this pass. A stored index
// beyond the current list length (the list shrank since the last write)
// resets to 0 so the cycle never stalls on an out-of-range slice. The
// cursor wraps to 0 exactly when the slice reaches the tail, so every
// feed is eventually visited over repeated invocations.
func SelectBatch(feeds []domain.Feed, cursor domain.Progress, batchSize int) Selection {
	if len(feeds) == 0 {
		return Selection{}
	}

	start := cursor.LastIndex
	if start < 0 || start >= len(feeds) {
		start = 0
	}

	end := start + batchSize
	if end > len(feeds) {
		end = len(feeds)
	}

	next := end
	if end >= len(feeds) {
		next = 0
	}

	return Selection{
		Feeds:      feeds[start:end],
		StartIndex: start,
		NextIndex:  next,
	}
}
