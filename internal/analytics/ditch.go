package analytics

import (
	"strings"
	"time"
	"varietyd/internal/models"

	"github.com/dustin/go-humanize/english"
)

// FindLongestDitch looks for the longest gap between two consecutive streams.
// streams must be ordered newest first. For the current year the gap since
// the newest stream competes with the historical one and wins ties.
func FindLongestDitch(year int, now time.Time, streams []models.StreamInterval) models.LongestDitch {
	current := year == now.UTC().Year()

	if len(streams) == 0 {
		if current {
			return models.LongestDitch{Type: models.DitchCurrent, From: models.YearStart(year)}
		}
		return pastDitch(models.YearStart(year), 0)
	}

	best, gap, found := widestGap(streams)

	if current {
		newest := streams[0]
		if found && now.Sub(newest.End()) < gap {
			return pastDitch(streams[best+1].End(), gap)
		}
		return models.LongestDitch{Type: models.DitchCurrent, From: newest.End()}
	}

	if !found {
		return pastDitch(models.YearStart(year), 0)
	}
	return pastDitch(streams[best+1].End(), gap)
}

// widestGap returns the index i of the pair (i, i+1) with the largest gap.
// The first maximum wins.
func widestGap(streams []models.StreamInterval) (int, time.Duration, bool) {
	if len(streams) < 2 {
		return 0, 0, false
	}
	best := 0
	bestGap := streams[1].GapTo(streams[0])
	for i := 1; i+1 < len(streams); i++ {
		if g := streams[i+1].GapTo(streams[i]); g > bestGap {
			best, bestGap = i, g
		}
	}
	return best, bestGap, true
}

func pastDitch(from time.Time, gap time.Duration) models.LongestDitch {
	return models.LongestDitch{Type: models.DitchPast, From: from, Duration: FormatDuration(gap)}
}

// FormatDuration renders d as "3 days 4 hours 5 minutes", leaving out zero
// parts. Anything below a minute is dropped.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, english.Plural(days, "day", ""))
	}
	if hours > 0 {
		parts = append(parts, english.Plural(hours, "hour", ""))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, english.Plural(minutes, "minute", ""))
	}
	return strings.Join(parts, " ")
}
