package models

const (
	ActivityVideo = "VIDEO"
	ActivityLive  = "LIVE"
)

// ActivityEvent is one upload or live session reported by the provider.
// Timestamp is epoch milliseconds of publish/start.
type ActivityEvent struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
	Type      string `json:"type"`
	IsLive    bool   `json:"isLive"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// ChannelMeta enriches pulse events with registry-level presentation data.
type ChannelMeta struct {
	Title string `json:"title"`
	Logo  string `json:"logo,omitempty"`
}

// PulseSnapshot is the durable result of one activity-feed cycle. Events are
// stored raw; the recency window and live-first ordering are re-derived on
// every read.
type PulseSnapshot struct {
	Activities    []ActivityEvent        `json:"activities"`
	Meta          map[string]ChannelMeta `json:"meta,omitempty"`
	Ts            int64                  `json:"ts"`
	QuotaExceeded bool                   `json:"quotaExceeded,omitempty"`
	Trace         []TraceEntry           `json:"trace,omitempty"`
}
