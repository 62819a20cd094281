package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_AppendBoundedWindow(t *testing.T) {
	b := NewBook(3)

	for i := int64(1); i <= 4; i++ {
		b.Append("UCa", i*10)
	}

	// Four appends into a window of three: the oldest sample is evicted.
	assert.Equal(t, []int64{20, 30, 40}, b.History("UCa"))
}

func TestBook_AppendReturnsWindowCopy(t *testing.T) {
	b := NewBook(5)

	window := b.Append("UCa", 100)
	require.Equal(t, []int64{100}, window)

	window[0] = 0
	assert.Equal(t, []int64{100}, b.History("UCa"), "caller mutation must not leak into the book")
}

func TestBook_PctNeedsTwoSamples(t *testing.T) {
	b := NewBook(5)

	assert.Equal(t, float64(0), b.Pct("UCa"), "no samples")

	b.Append("UCa", 100)
	assert.Equal(t, float64(0), b.Pct("UCa"), "single sample")
}

func TestBook_PctAcrossWindow(t *testing.T) {
	b := NewBook(5)
	b.Append("UCa", 100)
	b.Append("UCa", 110)
	b.Append("UCa", 150)

	assert.InDelta(t, 50.0, b.Pct("UCa"), 0.0001)
}

func TestBook_PctZeroBaseline(t *testing.T) {
	b := NewBook(5)
	b.Append("UCa", 0)
	b.Append("UCa", 10)

	// Division guards against a zero earliest sample.
	assert.InDelta(t, 1000.0, b.Pct("UCa"), 0.0001)
}

func TestBook_PctNegativeGrowth(t *testing.T) {
	b := NewBook(5)
	b.Append("UCa", 200)
	b.Append("UCa", 100)

	assert.InDelta(t, -50.0, b.Pct("UCa"), 0.0001)
}

func TestBook_PruneDropsInactiveSeries(t *testing.T) {
	b := NewBook(5)
	b.Append("UCa", 1)
	b.Append("UCb", 2)

	b.Prune(map[string]struct{}{"UCa": {}})

	assert.NotEmpty(t, b.History("UCa"))
	assert.Empty(t, b.History("UCb"))
}

func TestBook_SnapshotLoadRoundTrip(t *testing.T) {
	b := NewBook(3)
	b.Append("UCa", 1)
	b.Append("UCa", 2)

	restored := NewBook(3)
	restored.Load(b.Snapshot())

	assert.Equal(t, []int64{1, 2}, restored.History("UCa"))
}

func TestBook_LoadTrimsOversizedSeries(t *testing.T) {
	b := NewBook(2)
	b.Load(map[string][]int64{"UCa": {1, 2, 3, 4}})

	assert.Equal(t, []int64{3, 4}, b.History("UCa"))
}
