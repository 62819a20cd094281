package growth

import "sync"

const DefaultMaxSamples = 30

// Book keeps a bounded subscriber-count series per live channel id. Series
// are keyed by the matched external identity, not the registry id, so a
// registry rename keeps its history while an externalId change starts over.
type Book struct {
	mu         sync.Mutex
	samples    map[string][]int64
	maxSamples int
}

func NewBook(maxSamples int) *Book {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Book{
		samples:    make(map[string][]int64),
		maxSamples: maxSamples,
	}
}

// Append adds one sample, evicting the oldest when the window is full, and
// returns a copy of the current window (oldest first).
func (b *Book) Append(channelID string, subscribers int64) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := append(b.samples[channelID], subscribers)
	if len(s) > b.maxSamples {
		s = s[len(s)-b.maxSamples:]
	}
	b.samples[channelID] = s

	return copySamples(s)
}

func (b *Book) History(channelID string) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copySamples(b.samples[channelID])
}

// Pct reports percentage growth across the window. Fewer than two samples
// mean there is nothing to compare yet, so growth is 0 rather than undefined.
func (b *Book) Pct(channelID string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.samples[channelID]
	if len(s) < 2 {
		return 0
	}
	earliest, latest := s[0], s[len(s)-1]
	denom := earliest
	if denom < 1 {
		denom = 1
	}
	return float64(latest-earliest) / float64(denom) * 100
}

// Prune drops series whose channel id is no longer matched by any registry
// record, so deleted registry entries do not leak history forever.
func (b *Book) Prune(active map[string]struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range b.samples {
		if _, ok := active[id]; !ok {
			delete(b.samples, id)
		}
	}
}

// Snapshot returns a deep copy suitable for persisting.
func (b *Book) Snapshot() map[string][]int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string][]int64, len(b.samples))
	for id, s := range b.samples {
		out[id] = copySamples(s)
	}
	return out
}

// Load replaces the book's contents, trimming each series to the window.
func (b *Book) Load(samples map[string][]int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = make(map[string][]int64, len(samples))
	for id, s := range samples {
		if len(s) > b.maxSamples {
			s = s[len(s)-b.maxSamples:]
		}
		b.samples[id] = copySamples(s)
	}
}

func copySamples(s []int64) []int64 {
	if len(s) == 0 {
		return nil
	}
	out := make([]int64, len(s))
	copy(out, s)
	return out
}
