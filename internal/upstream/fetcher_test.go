package upstream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
	"varietyd/internal/models"
	"varietyd/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves synthetic pages of total rows and fails the offsets in failAt.
type fakeSource struct {
	mu      sync.Mutex
	total   int
	failAt  map[int]bool
	offsets []int
}

func (f *fakeSource) FetchPage(_ context.Context, kind Kind, year, offset int, out any) error {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	f.mu.Unlock()

	if f.failAt[offset] {
		return errors.New("boom")
	}

	n := min(PageSize, max(f.total-offset, 0))
	var rows []any
	for i := 0; i < n; i++ {
		idx := offset + i
		switch kind {
		case KindGames:
			rows = append(rows, map[string]any{
				"streamtime":  idx,
				"gamesplayed": fmt.Sprintf("Game %d|https://img/%d.png|x", idx, idx),
			})
		default:
			start := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).Add(-time.Duration(idx) * time.Hour)
			rows = append(rows, map[string]any{
				"startDateTime": start.Format(time.RFC3339),
				"length":        30,
			})
		}
	}

	body, err := json.Marshal(map[string]any{"recordsTotal": f.total, "data": rows})
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (f *fakeSource) sortedOffsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]int(nil), f.offsets...)
	sort.Ints(out)
	return out
}

func TestFetcher_FetchesEveryPage(t *testing.T) {
	src := &fakeSource{total: 250}
	f := NewFetcher(src, &testutil.MockLogger{})

	games, err := f.Games(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 100, 200}, src.sortedOffsets())
	require.Len(t, games, 250)
	for i, g := range games {
		assert.Equal(t, uint64(i), g.SecondsStreamed)
	}
}

func TestFetcher_FailedSecondaryPageIsSkipped(t *testing.T) {
	src := &fakeSource{total: 250, failAt: map[int]bool{200: true}}
	logger := &testutil.MockLogger{}
	f := NewFetcher(src, logger)

	games, err := f.Games(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 100, 200}, src.sortedOffsets())
	require.Len(t, games, 200)
	assert.Equal(t, uint64(0), games[0].SecondsStreamed)
	assert.Equal(t, uint64(199), games[199].SecondsStreamed)
	assert.True(t, logger.HasLevel("warn"))
}

func TestFetcher_FailedFirstPage(t *testing.T) {
	src := &fakeSource{total: 250, failAt: map[int]bool{0: true}}
	f := NewFetcher(src, &testutil.MockLogger{})

	_, err := f.Games(context.Background(), 2023)
	require.Error(t, err)

	var fetchErr *models.UpstreamFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "games", fetchErr.Kind)
	assert.Equal(t, 2023, fetchErr.Year)
	assert.Equal(t, 0, fetchErr.Offset)
	assert.Equal(t, []int{0}, src.sortedOffsets())
}

func TestFetcher_SinglePage(t *testing.T) {
	src := &fakeSource{total: 100}
	f := NewFetcher(src, &testutil.MockLogger{})

	games, err := f.Games(context.Background(), 2023)
	require.NoError(t, err)
	assert.Len(t, games, 100)
	assert.Equal(t, []int{0}, src.sortedOffsets())
}

func TestFetcher_StreamsNewestFirst(t *testing.T) {
	src := &fakeSource{total: 150}
	f := NewFetcher(src, &testutil.MockLogger{})

	streams, err := f.Streams(context.Background(), 2022)
	require.NoError(t, err)
	require.Len(t, streams, 150)
	for i := 1; i < len(streams); i++ {
		assert.True(t, streams[i-1].StartTime.After(streams[i].StartTime))
	}
	assert.Equal(t, int64(30), streams[0].LengthMinutes)
}

func TestRemainingPages(t *testing.T) {
	cases := map[int]int{0: 0, -5: 0, 1: 0, 100: 0, 101: 1, 200: 1, 201: 2, 250: 2, 1000: 9,
		maxPages * PageSize: maxPages - 1, maxPages*PageSize + 1: maxPages - 1, 1 << 40: maxPages - 1}
	for total, want := range cases {
		assert.Equal(t, want, remainingPages(total), "total %d", total)
	}
}

func TestFetcher_BogusTotalIsCapped(t *testing.T) {
	src := &fakeSource{total: 1 << 40}
	logger := &testutil.MockLogger{}
	f := NewFetcher(src, logger)

	games, err := f.Games(context.Background(), 2023)
	require.NoError(t, err)

	offsets := src.sortedOffsets()
	require.Len(t, offsets, maxPages)
	assert.Equal(t, (maxPages-1)*PageSize, offsets[len(offsets)-1])
	assert.Len(t, games, maxPages*PageSize)
	assert.Equal(t, len(games), cap(games))
	assert.True(t, logger.HasLevel("warn"))
}
