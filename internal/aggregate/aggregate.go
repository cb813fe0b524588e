package aggregate

import (
	"net/url"
	"sort"
	"strings"

	"SitemapWatcher/internal/domain"
)

const (
	// KeywordLimit caps how many keywords the digest presents.
	KeywordLimit = 10
	// DomainSampleLimit caps how many URLs are kept per domain for display.
	DomainSampleLimit = 3

	minSegmentLen = 3
)

// stoplist holds path segments too generic to count as keywords.
var stoplist = map[string]struct{}{
	"index":   {},
	"page":    {},
	"post":    {},
	"article": {},
	"news":    {},
	"blog":    {},
}

// Stats folds one pass's per-feed outcomes into the digest statistics.
// Only successful outcomes contribute; malformed URLs are skipped.
func Stats(outcomes []domain.Outcome) domain.PassStats {
	var urls []string
	total := 0
	for _, out := range outcomes {
		if !out.Success {
			continue
		}
		urls = append(urls, out.NewURLs...)
		total += len(out.NewURLs)
	}

	return domain.PassStats{
		Keywords: Keywords(urls, KeywordLimit),
		Domains:  Domains(urls, DomainSampleLimit),
		TotalNew: total,
	}
}

// Keywords builds a frequency table of normalized path keywords across
// all given URLs, ranked by count descending with first-seen order
// breaking ties, capped to limit entries.
func Keywords(urls []string, limit int) []domain.KeywordStat {
	counts := map[string]int{}
	var order []string

	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			continue
		}
		for _, keyword := range pathKeywords(parsed.Path) {
			if counts[keyword] == 0 {
				order = append(order, keyword)
			}
			counts[keyword]++
		}
	}

	stats := make([]domain.KeywordStat, 0, len(order))
	for _, keyword := range order {
		stats = append(stats, domain.KeywordStat{Keyword: keyword, Count: counts[keyword]})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// Domains groups URLs by host, ranked by count descending with
// first-seen order breaking ties, keeping up to sampleLimit URLs per
// host for display alongside the true total.
func Domains(urls []string, sampleLimit int) []domain.DomainStat {
	byHost := map[string]*domain.DomainStat{}
	var order []string

	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			continue
		}
		host := parsed.Host

		stat, ok := byHost[host]
		if !ok {
			stat = &domain.DomainStat{Domain: host}
			byHost[host] = stat
			order = append(order, host)
		}
		stat.Count++
		if sampleLimit <= 0 || len(stat.SampleURLs) < sampleLimit {
			stat.SampleURLs = append(stat.SampleURLs, raw)
		}
	}

	stats := make([]domain.DomainStat, 0, len(order))
	for _, host := range order {
		stats = append(stats, *byHost[host])
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	return stats
}

// pathKeywords extracts normalized keywords from one URL path:
// split on "/", drop short, numeric, dotted, and stoplisted segments,
// then strip hyphens and lower-case what survives.
func pathKeywords(path string) []string {
	var keywords []string
	for _, segment := range strings.Split(path, "/") {
		if len(segment) < minSegmentLen {
			continue
		}
		if isNumeric(segment) || strings.Contains(segment, ".") {
			continue
		}
		if _, stopped := stoplist[strings.ToLower(segment)]; stopped {
			continue
		}

		normalized := strings.ToLower(strings.ReplaceAll(segment, "-", ""))
		if len(normalized) < minSegmentLen {
			continue
		}
		keywords = append(keywords, normalized)
	}
	return keywords
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
