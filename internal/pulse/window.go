package pulse

import (
	"sort"
	"studiosync/internal/models"
	"time"
)

// Window is the recency horizon of the activity feed.
const Window = 24 * time.Hour

// WindowEvents filters events to the strict 24h window (an event exactly 24h
// old is excluded) and orders them live-first, then newest-first. An ongoing
// live session always outranks a newer but finished upload. Pure function of
// (events, now); the result is re-derived on every read.
func WindowEvents(events []models.ActivityEvent, now time.Time) []models.ActivityEvent {
	cutoff := now.Add(-Window).UnixMilli()

	out := make([]models.ActivityEvent, 0, len(events))
	for _, e := range events {
		if e.Timestamp > cutoff {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsLive != out[j].IsLive {
			return out[i].IsLive
		}
		return out[i].Timestamp > out[j].Timestamp
	})

	return out
}
