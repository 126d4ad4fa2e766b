package crawl

import (
	"fmt"

	"github.com/fwojciec/spider"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatSummary renders a crawl result as a single line.
func FormatSummary(result *spider.CrawlResult) string {
	return fmt.Sprintf("Visited %d, waiting %d, fetched %d (%s), failed %d, duplicates %d",
		result.Visited, result.Waiting, result.Fetched, FormatBytes(result.Bytes), result.Failed, result.Duplicates)
}
