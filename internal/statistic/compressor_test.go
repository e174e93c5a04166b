package statistic

import (
	"bytes"
	"io"
	"testing"
	"time"
	"varietyd/internal/models"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotPayload(t *testing.T) []byte {
	t.Helper()
	snap := &models.YearSnapshot{
		Year:          2023,
		MainGame:      "Overwatch",
		PerDayMinutes: make([]float64, 365),
		Games:         []models.GameModel{{MinutesStreamed: 90, Category: "Just Chatting", CategoryImageUrl: "https://img/jc.png"}},
		ComputedAt:    time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(models.YearResult{Snapshot: snap, KnownYears: []int{2023, 2022}})
	require.NoError(t, err)
	return body
}

func TestZstdCompression_SnapshotRoundtrip(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	original := snapshotPayload(t)
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

// Cached payloads are sent as-is to clients accepting zstd, so they must be
// a complete frame any streaming reader understands.
func TestZstdCompression_StreamReadable(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	original := bytes.Repeat(snapshotPayload(t), 20)
	compressed, err := c.Compress(original)
	require.NoError(t, err)

	r, err := zstd.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestZstdCompression_EmptyData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	compressed, err := c.Compress([]byte{})
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestZstdCompression_DecompressInvalidData(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Decompress([]byte(`{"snapshot":null}`))
	assert.Error(t, err)
}
