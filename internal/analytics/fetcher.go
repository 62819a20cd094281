package analytics

import (
	"context"
	"errors"
	"strings"
	"studiosync/internal/models"
	"studiosync/internal/providers"
)

// BatchResult carries the partial outcome of one batched stats lookup. The
// batch never fails as a whole: failed identifiers are recorded in the trace
// and the rest proceeds.
type BatchResult struct {
	Stats         map[string]models.LiveStatsRecord
	Trace         []models.TraceEntry
	QuotaExceeded bool
}

type ActivityResult struct {
	Events        []models.ActivityEvent
	Trace         []models.TraceEntry
	QuotaExceeded bool
}

type Fetcher struct {
	pool   *KeyPool
	client Client
	logger providers.Logger
}

func NewFetcher(pool *KeyPool, client Client, logger providers.Logger) *Fetcher {
	return &Fetcher{
		pool:   pool,
		client: client,
		logger: logger,
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// FetchBatch resolves live stats for each identifier. Once the pool signals
// exhaustion mid-batch, the remaining lookups fail with a quota marker
// instead of being retried against another key within the same cycle.
func (f *Fetcher) FetchBatch(ctx context.Context, ids []string) BatchResult {
	res := BatchResult{Stats: make(map[string]models.LiveStatsRecord)}

	for _, id := range dedupe(ids) {
		if res.QuotaExceeded {
			res.Trace = append(res.Trace, quotaTrace(id))
			continue
		}

		key, err := f.pool.NextActiveKey()
		if err != nil {
			res.QuotaExceeded = true
			res.Trace = append(res.Trace, quotaTrace(id))
			continue
		}

		var rec *models.LiveStatsRecord
		if strings.HasPrefix(id, "@") {
			rec, err = f.client.ChannelByHandle(ctx, key, id)
		} else {
			rec, err = f.client.ChannelByID(ctx, key, id)
		}

		if errors.Is(err, ErrQuotaExceeded) {
			f.pool.ReportExhausted(key)
			res.QuotaExceeded = true
			res.Trace = append(res.Trace, quotaTrace(id))
			continue
		}
		if err != nil {
			f.logger.Warnf(providers.TypeSync, "Lookup failed for %s: %s", id, err)
			res.Trace = append(res.Trace, models.TraceEntry{
				ID:     id,
				Status: models.TraceError,
				Error:  err.Error(),
			})
			continue
		}

		res.Stats[id] = *rec
		res.Trace = append(res.Trace, models.TraceEntry{
			Name:   rec.DisplayTitle,
			ID:     rec.ChannelID,
			Status: models.TraceSuccess,
			Count:  rec.Subscribers,
		})
	}

	return res
}

// FetchActivity collects recent uploads and live sessions per channel id,
// with the same per-identifier failure isolation as FetchBatch.
func (f *Fetcher) FetchActivity(ctx context.Context, channelIDs []string, perChannel int) ActivityResult {
	var res ActivityResult

	for _, id := range dedupe(channelIDs) {
		if res.QuotaExceeded {
			res.Trace = append(res.Trace, quotaTrace(id))
			continue
		}

		key, err := f.pool.NextActiveKey()
		if err != nil {
			res.QuotaExceeded = true
			res.Trace = append(res.Trace, quotaTrace(id))
			continue
		}

		events, err := f.client.RecentActivity(ctx, key, id, perChannel)
		if errors.Is(err, ErrQuotaExceeded) {
			f.pool.ReportExhausted(key)
			res.QuotaExceeded = true
			res.Trace = append(res.Trace, quotaTrace(id))
			continue
		}
		if err != nil {
			f.logger.Warnf(providers.TypeSync, "Activity lookup failed for %s: %s", id, err)
			res.Trace = append(res.Trace, models.TraceEntry{
				ID:     id,
				Status: models.TraceError,
				Error:  err.Error(),
			})
			continue
		}

		res.Events = append(res.Events, events...)
		res.Trace = append(res.Trace, models.TraceEntry{
			ID:     id,
			Status: models.TraceSuccess,
			Count:  int64(len(events)),
		})
	}

	return res
}

func quotaTrace(id string) models.TraceEntry {
	return models.TraceEntry{
		ID:     id,
		Status: models.TraceError,
		Error:  ErrQuotaExceeded.Error(),
	}
}
