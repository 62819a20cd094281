package models

// LiveStatsRecord is a per-cycle snapshot of one channel as reported by the
// analytics provider. It is never persisted on its own, only through its join
// with a RegistryRecord.
type LiveStatsRecord struct {
	ChannelID    string `json:"channelId"`
	Handle       string `json:"handle,omitempty"`
	DisplayTitle string `json:"displayTitle"`
	LogoURL      string `json:"logoUrl,omitempty"`
	Subscribers  int64  `json:"subscriberCount"`
	Views        int64  `json:"viewCount"`
	Uploads      int64  `json:"uploadCount"`
}

// EnrichedClient is the materialized registry x live-stats join served to
// consumers. Unmatched records keep Matched=false with zero counters so the
// UI can render a "No Data" badge instead of dropping the row.
type EnrichedClient struct {
	RegistryRecord
	Matched      bool    `json:"matched"`
	ChannelID    string  `json:"channelId,omitempty"`
	DisplayTitle string  `json:"displayTitle,omitempty"`
	LogoURL      string  `json:"logoUrl,omitempty"`
	Subscribers  int64   `json:"subscribers"`
	GrowthPct    float64 `json:"growthPct"`
	History      []int64 `json:"history,omitempty"`
}

// TraceEntry records the outcome of one identifier lookup within a batch,
// kept purely for diagnostics (the pulse debug payload).
type TraceEntry struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Error  string `json:"error,omitempty"`
}

const (
	TraceSuccess = "success"
	TraceError   = "error"
)

// StatsSnapshot is the durable result of one registry synchronization cycle.
// It is always written wholesale, never merged field by field. History keeps
// the bounded subscriber series per matched live channel id so growth figures
// survive restarts and registry renames.
type StatsSnapshot struct {
	Clients       []EnrichedClient   `json:"data"`
	History       map[string][]int64 `json:"history,omitempty"`
	FetchedAt     int64              `json:"fetchedAt"`
	QuotaExceeded bool               `json:"quotaExceeded,omitempty"`
}
