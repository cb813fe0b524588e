package usecase

import (
	"fmt"
	"strings"
	"time"

	"SitemapWatcher/internal/domain"
)

// DigestMessage renders the single per-pass summary: title with
// timestamp, per-domain breakdown, keyword frequency block, closing
// total. An empty breakdown is stated explicitly so "checked but
// nothing new" is distinguishable from "nothing was checked".
func DigestMessage(stats domain.PassStats, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sitemap digest for %s\n\n", at.UTC().Format("2006-01-02 15:04 MST"))

	if len(stats.Domains) == 0 {
		b.WriteString("No domains reported new pages this pass.\n")
	} else {
		for _, d := range stats.Domains {
			fmt.Fprintf(&b, "%s: %d new\n", d.Domain, d.Count)
			for _, sample := range d.SampleURLs {
				fmt.Fprintf(&b, "  %s\n", sample)
			}
			if hidden := d.Count - len(d.SampleURLs); hidden > 0 {
				fmt.Fprintf(&b, "  ...and %d more\n", hidden)
			}
		}
	}

	if len(stats.Keywords) > 0 {
		b.WriteString("\nTop keywords:\n")
		for _, k := range stats.Keywords {
			fmt.Fprintf(&b, "  %s (%d)\n", k.Keyword, k.Count)
		}
	}

	fmt.Fprintf(&b, "\nTotal new pages: %d", stats.TotalNew)
	return b.String()
}

// immediateHeader opens the per-feed three-message sequence.
func immediateHeader(out domain.Outcome) string {
	name := out.FeedName
	if name == "" {
		name = out.FeedURL
	}
	return fmt.Sprintf("%s: %d new page(s)", name, len(out.NewURLs))
}

// immediateLinks renders the link list, capped when linkCap > 0.
func immediateLinks(urls []string, linkCap int) string {
	shown := urls
	if linkCap > 0 && len(urls) > linkCap {
		shown = urls[:linkCap]
	}

	var b strings.Builder
	for i, u := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(u)
	}
	if hidden := len(urls) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "\n...%d more", hidden)
	}
	return b.String()
}

// immediateFooter closes the sequence after the channel has rendered
// the preceding messages.
func immediateFooter(out domain.Outcome, at time.Time) string {
	return fmt.Sprintf("Checked %s at %s", out.FeedURL, at.UTC().Format("15:04:05 MST"))
}
