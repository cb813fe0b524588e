package domain

import "time"

// ProgressSchemaVersion marks the current layout of the persisted cursor.
const ProgressSchemaVersion = 1

// Feed is a single monitored endpoint from the registered feed list.
type Feed struct {
	Name      string
	URL       string
	Inspector string
}

// Progress is the scheduling cursor persisted between passes. It is owned
// exclusively by the scheduler and overwritten as a whole at the end of
// every pass.
type Progress struct {
	SchemaVersion    int       `json:"schemaVersion"`
	LastIndex        int       `json:"lastIndex"`
	LastUpdate       time.Time `json:"lastUpdate"`
	TotalFeeds       int       `json:"totalFeeds"`
	ProcessedInBatch int       `json:"processedInThisBatch"`
}

// Outcome is the ephemeral result of inspecting one feed during a pass.
type Outcome struct {
	FeedURL      string
	FeedName     string
	Success      bool
	NewURLs      []string
	ErrorMessage string
	Content      []byte
}

// KeywordStat is one row of the per-pass keyword frequency table.
type KeywordStat struct {
	Keyword string
	Count   int
}

// DomainStat groups a pass's new URLs by host. Count is the true total;
// SampleURLs holds at most the first few URLs for display.
type DomainStat struct {
	Domain     string
	Count      int
	SampleURLs []string
}

// PassStats is the aggregated view of one pass, recomputed from scratch
// every time and never persisted.
type PassStats struct {
	Keywords []KeywordStat
	Domains  []DomainStat
	TotalNew int
}
