package analytics

import (
	"testing"
	"time"
	"varietyd/internal/models"

	"github.com/stretchr/testify/assert"
)

const day = 24 * time.Hour

// endingAt returns a one-hour stream that ends at end.
func endingAt(end time.Time) models.StreamInterval {
	return models.StreamInterval{StartTime: end.Add(-time.Hour), LengthMinutes: 60}
}

// streamsWithGaps builds newest-first streams whose newest one ends at
// newestEnd and whose consecutive gaps are the given durations.
func streamsWithGaps(newestEnd time.Time, gaps ...time.Duration) []models.StreamInterval {
	out := []models.StreamInterval{endingAt(newestEnd)}
	for _, g := range gaps {
		prev := out[len(out)-1]
		out = append(out, endingAt(prev.StartTime.Add(-g)))
	}
	return out
}

func TestFindLongestDitch_LargestPastGapWins(t *testing.T) {
	now := utc(2024, time.June, 15, 12, 0)
	streams := streamsWithGaps(now.Add(-day), 5*day, 2*day, 10*day)

	got := FindLongestDitch(2024, now, streams)

	assert.Equal(t, models.DitchPast, got.Type)
	assert.Equal(t, streams[3].End(), got.From)
	assert.Equal(t, "10 days", got.Duration)
}

func TestFindLongestDitch_EmptyCurrentYear(t *testing.T) {
	now := utc(2024, time.June, 15, 12, 0)

	got := FindLongestDitch(2024, now, nil)

	assert.Equal(t, models.LongestDitch{Type: models.DitchCurrent, From: models.YearStart(2024)}, got)
}

func TestFindLongestDitch_OpenGapWins(t *testing.T) {
	now := utc(2024, time.June, 15, 12, 0)
	streams := streamsWithGaps(now.Add(-20*day), 5*day, 3*day)

	got := FindLongestDitch(2024, now, streams)

	assert.Equal(t, models.DitchCurrent, got.Type)
	assert.Equal(t, streams[0].End(), got.From)
	assert.Empty(t, got.Duration)
}

func TestFindLongestDitch_OpenGapWinsTie(t *testing.T) {
	now := utc(2024, time.June, 15, 12, 0)
	streams := streamsWithGaps(now.Add(-4*day), 4*day)

	got := FindLongestDitch(2024, now, streams)

	assert.Equal(t, models.DitchCurrent, got.Type)
}

func TestFindLongestDitch_SingleStreamCurrentYear(t *testing.T) {
	now := utc(2024, time.June, 15, 12, 0)
	streams := streamsWithGaps(now.Add(-time.Hour))

	got := FindLongestDitch(2024, now, streams)

	assert.Equal(t, models.DitchCurrent, got.Type)
	assert.Equal(t, streams[0].End(), got.From)
}

func TestFindLongestDitch_FirstMaximumWins(t *testing.T) {
	end := utc(2023, time.October, 1, 20, 0)
	streams := streamsWithGaps(end, 3*day, 3*day)

	got := FindLongestDitch(2023, utc(2024, time.January, 5, 0, 0), streams)

	assert.Equal(t, models.DitchPast, got.Type)
	assert.Equal(t, streams[1].End(), got.From)
	assert.Equal(t, "3 days", got.Duration)
}

func TestFindLongestDitch_PastYearWithoutPair(t *testing.T) {
	streams := streamsWithGaps(utc(2023, time.March, 3, 3, 0))

	got := FindLongestDitch(2023, utc(2024, time.January, 5, 0, 0), streams)

	assert.Equal(t, models.LongestDitch{Type: models.DitchPast, From: models.YearStart(2023), Duration: "0 minutes"}, got)
}

func TestFindLongestDitch_EmptyPastYear(t *testing.T) {
	got := FindLongestDitch(2022, utc(2024, time.January, 5, 0, 0), nil)

	assert.Equal(t, models.DitchPast, got.Type)
	assert.Equal(t, models.YearStart(2022), got.From)
	assert.Equal(t, "0 minutes", got.Duration)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 minutes"},
		{30 * time.Second, "0 minutes"},
		{-time.Hour, "0 minutes"},
		{time.Minute, "1 minute"},
		{2 * time.Hour, "2 hours"},
		{day + time.Hour + time.Minute, "1 day 1 hour 1 minute"},
		{10 * day, "10 days"},
		{3*day + 45*time.Minute, "3 days 45 minutes"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), tc.in.String())
	}
}
