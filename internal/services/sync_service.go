package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"studiosync/internal/analytics"
	"studiosync/internal/growth"
	"studiosync/internal/matching"
	"studiosync/internal/models"
	"studiosync/internal/persistence"
	"studiosync/internal/providers"
	"studiosync/internal/pulse"
	"studiosync/internal/registry"
	"studiosync/internal/structures"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// SyncState describes one synchronization target from the consumer's point
// of view. Stale means a refresh failed but the last good snapshot is still
// being served.
type SyncState string

const (
	StateCold  SyncState = "cold"
	StateWarm  SyncState = "warm"
	StateStale SyncState = "stale"
)

const (
	TargetStats = "stats"
	TargetPulse = "pulse"

	statsFileName = "stats.snap.zst"
	pulseFileName = "pulse.snap.zst"
)

// StatsFetcher is the slice of the analytics layer the service needs.
type StatsFetcher interface {
	FetchBatch(ctx context.Context, ids []string) analytics.BatchResult
	FetchActivity(ctx context.Context, channelIDs []string, perChannel int) analytics.ActivityResult
}

type StatsView struct {
	Snapshot      models.StatsSnapshot
	State         SyncState
	QuotaExceeded bool
}

type PulseView struct {
	Snapshot      models.PulseSnapshot
	State         SyncState
	QuotaExceeded bool
}

type SyncServiceInterface interface {
	SyncStats(ctx context.Context) error
	SyncPulse(ctx context.Context) error
	Stats() StatsView
	Pulse(debug bool) PulseView
	Restore() error
	Persist() error
}

// SyncService owns the fetch -> match -> track -> commit pipeline for both
// targets. Snapshots are swapped wholesale under the mutex, so readers never
// observe a partial join; the old snapshot stays visible until the new one
// is fully computed.
type SyncService struct {
	config   *structures.Config
	logger   providers.Logger
	registry registry.StoreInterface
	fetcher  StatsFetcher
	files    *persistence.FileManager
	metrics  providers.MetricsProviderInterface

	mu         sync.RWMutex
	stats      models.StatsSnapshot
	statsState SyncState
	statsQuota bool
	pulseSnap  models.PulseSnapshot
	pulseState SyncState
	pulseQuota bool

	book *growth.Book

	// owners remembers which registry record last resolved to each live
	// channel id. Mutated only by SyncStats (serialized by the in-flight
	// latch) and by Restore at boot.
	owners map[string]string

	// A forced refresh racing a scheduled one must not start a second fetch
	// for the same target; the loser of the swap is simply a no-op.
	statsInFlight atomic.Bool
	pulseInFlight atomic.Bool

	statsPath string
	pulsePath string

	now func() time.Time
}

func NewSyncService(conf *structures.Config, logger providers.Logger, store registry.StoreInterface, fetcher StatsFetcher, files *persistence.FileManager, metrics providers.MetricsProviderInterface) SyncServiceInterface {
	return &SyncService{
		config:     conf,
		logger:     logger,
		registry:   store,
		fetcher:    fetcher,
		files:      files,
		metrics:    metrics,
		statsState: StateCold,
		pulseState: StateCold,
		book:       growth.NewBook(conf.Sync.HistorySamples),
		owners:     make(map[string]string),
		statsPath:  filepath.Join(conf.Persistence.Dir, statsFileName),
		pulsePath:  filepath.Join(conf.Persistence.Dir, pulseFileName),
		now:        time.Now,
	}
}

func (s *SyncService) SyncStats(ctx context.Context) error {
	if !s.statsInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer s.statsInFlight.Store(false)

	start := s.now()
	recs := s.registry.List()

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ExternalID)
	}

	res := s.fetcher.FetchBatch(ctx, ids)

	if len(ids) > 0 && len(res.Stats) == 0 {
		s.markFailed(TargetStats, res.QuotaExceeded)
		return fmt.Errorf("stats sync returned no data for %d identifiers (quotaExceeded=%v)", len(ids), res.QuotaExceeded)
	}

	// Stable live order: the dedup order of the queried identifiers.
	live := make([]models.LiveStatsRecord, 0, len(res.Stats))
	seen := make(map[string]struct{}, len(res.Stats))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if lv, ok := res.Stats[id]; ok {
			live = append(live, lv)
		}
	}

	clients := make([]models.EnrichedClient, 0, len(recs))
	cycleOwners := make(map[string]string, len(recs))
	appended := make(map[string]struct{}, len(recs))
	matched := 0

	for _, rec := range recs {
		ec := models.EnrichedClient{RegistryRecord: rec}
		if lv, ok := matching.Match(rec, live); ok {
			ec.Matched = true
			ec.ChannelID = lv.ChannelID
			ec.DisplayTitle = lv.DisplayTitle
			ec.Subscribers = lv.Subscribers
			ec.LogoURL = lv.LogoURL
			if rec.Logo != "" {
				ec.LogoURL = rec.Logo
			}

			// Colliding registry records share one series: only the first
			// match of a cycle appends a sample and claims ownership.
			if _, done := appended[lv.ChannelID]; !done {
				appended[lv.ChannelID] = struct{}{}
				cycleOwners[lv.ChannelID] = rec.ID
				ec.History = s.book.Append(lv.ChannelID, lv.Subscribers)
			} else {
				ec.History = s.book.History(lv.ChannelID)
			}
			ec.GrowthPct = s.book.Pct(lv.ChannelID)

			matched++
		}
		clients = append(clients, ec)
	}

	s.book.Prune(s.retainSet(recs, cycleOwners))

	snap := models.StatsSnapshot{
		Clients:       clients,
		History:       s.book.Snapshot(),
		FetchedAt:     s.now().UnixMilli(),
		QuotaExceeded: res.QuotaExceeded,
	}

	s.mu.Lock()
	s.stats = snap
	s.statsState = StateWarm
	s.statsQuota = res.QuotaExceeded
	s.mu.Unlock()

	s.metrics.SetMatchedClients(matched, len(recs))
	s.metrics.SetQuotaExceeded(res.QuotaExceeded)
	s.metrics.ObserveSyncDuration(TargetStats, time.Since(start))

	if err := s.files.Save(s.statsPath, &snap); err != nil {
		s.logger.Errorf(providers.TypeSync, "Error while persisting stats snapshot: %s", err)
	}

	s.logger.Infof(providers.TypeSync, "Stats cycle done: %d/%d matched, quotaExceeded=%v", matched, len(recs), res.QuotaExceeded)
	return nil
}

func (s *SyncService) SyncPulse(ctx context.Context) error {
	if !s.pulseInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer s.pulseInFlight.Store(false)

	start := s.now()
	ids := s.pulseChannelIDs()

	res := s.fetcher.FetchActivity(ctx, ids, s.config.Sync.ActivityPerChannel)

	if len(ids) > 0 && allFailed(res.Trace) {
		s.markFailed(TargetPulse, res.QuotaExceeded)
		return fmt.Errorf("pulse sync failed for all %d channels (quotaExceeded=%v)", len(ids), res.QuotaExceeded)
	}

	snap := models.PulseSnapshot{
		Activities:    res.Events,
		Meta:          s.pulseMeta(),
		Ts:            s.now().UnixMilli(),
		QuotaExceeded: res.QuotaExceeded,
		Trace:         res.Trace,
	}

	s.mu.Lock()
	s.pulseSnap = snap
	s.pulseState = StateWarm
	s.pulseQuota = res.QuotaExceeded
	s.mu.Unlock()

	s.metrics.SetQuotaExceeded(res.QuotaExceeded)
	s.metrics.ObserveSyncDuration(TargetPulse, time.Since(start))

	if err := s.files.Save(s.pulsePath, &snap); err != nil {
		s.logger.Errorf(providers.TypeSync, "Error while persisting pulse snapshot: %s", err)
	}

	s.logger.Infof(providers.TypeSync, "Pulse cycle done: %d events from %d channels", len(res.Events), len(ids))
	return nil
}

// retainSet decides which history series survive this cycle. A series is kept
// while its channel matched now, or while the registry record that last
// resolved to it still exists and has not moved to a different channel. A
// transient per-identifier lookup failure therefore never discards
// accumulated history; only deleting the record or repointing its externalId
// does.
func (s *SyncService) retainSet(recs []models.RegistryRecord, cycleOwners map[string]string) map[string]struct{} {
	recIDs := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		recIDs[rec.ID] = struct{}{}
	}
	matchedChannel := make(map[string]string, len(cycleOwners))
	for ch, owner := range cycleOwners {
		matchedChannel[owner] = ch
	}

	keep := make(map[string]struct{}, len(s.owners)+len(cycleOwners))
	for ch, owner := range cycleOwners {
		s.owners[ch] = owner
		keep[ch] = struct{}{}
	}
	for ch, owner := range s.owners {
		if _, ok := keep[ch]; ok {
			continue
		}
		if _, ok := recIDs[owner]; !ok {
			delete(s.owners, ch)
			continue
		}
		if moved, ok := matchedChannel[owner]; ok && moved != ch {
			delete(s.owners, ch)
			continue
		}
		keep[ch] = struct{}{}
	}
	return keep
}

// pulseChannelIDs prefers the canonical ids resolved by the last stats cycle
// and falls back to canonical registry identifiers for records that have not
// matched yet. Handles cannot be queried for activity directly.
func (s *SyncService) pulseChannelIDs() []string {
	recs := s.registry.List()

	s.mu.RLock()
	clients := s.stats.Clients
	s.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, c := range clients {
		if c.Matched && c.ChannelID != "" {
			if _, ok := seen[c.ChannelID]; !ok {
				seen[c.ChannelID] = struct{}{}
				ids = append(ids, c.ChannelID)
			}
		}
	}
	for _, rec := range recs {
		if rec.HasCanonicalID() {
			if _, ok := seen[rec.ExternalID]; !ok {
				seen[rec.ExternalID] = struct{}{}
				ids = append(ids, rec.ExternalID)
			}
		}
	}
	return ids
}

func (s *SyncService) pulseMeta() map[string]models.ChannelMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta := make(map[string]models.ChannelMeta)
	for _, c := range s.stats.Clients {
		if !c.Matched || c.ChannelID == "" {
			continue
		}
		title := c.DisplayTitle
		if title == "" {
			title = c.Name
		}
		meta[c.ChannelID] = models.ChannelMeta{Title: title, Logo: c.LogoURL}
	}
	return meta
}

func (s *SyncService) markFailed(target string, quota bool) {
	s.mu.Lock()
	switch target {
	case TargetStats:
		if s.statsState != StateCold {
			s.statsState = StateStale
		}
		s.statsQuota = quota
	case TargetPulse:
		if s.pulseState != StateCold {
			s.pulseState = StateStale
		}
		s.pulseQuota = quota
	}
	s.mu.Unlock()

	s.metrics.IncSyncFailures(target)
	s.metrics.SetQuotaExceeded(quota)
}

func (s *SyncService) Stats() StatsView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatsView{
		Snapshot:      s.stats,
		State:         s.statsState,
		QuotaExceeded: s.statsQuota,
	}
}

// Pulse re-derives the windowed, live-first feed from the committed snapshot.
// The trace is diagnostics only and is stripped unless debug is requested.
func (s *SyncService) Pulse(debug bool) PulseView {
	s.mu.RLock()
	snap := s.pulseSnap
	state := s.pulseState
	quota := s.pulseQuota
	s.mu.RUnlock()

	snap.Activities = pulse.WindowEvents(snap.Activities, s.now())
	if !debug {
		snap.Trace = nil
	}

	return PulseView{
		Snapshot:      snap,
		State:         state,
		QuotaExceeded: quota,
	}
}

// Restore reloads both snapshots from disk so consumers have content before
// the first provider round trip. A missing file simply leaves the target cold.
func (s *SyncService) Restore() error {
	var errs []error

	var stats models.StatsSnapshot
	found, err := s.files.Load(s.statsPath, &stats)
	if err != nil {
		errs = append(errs, fmt.Errorf("stats snapshot: %w", err))
	} else if found {
		s.book.Load(stats.History)
		for _, c := range stats.Clients {
			if c.Matched && c.ChannelID != "" {
				if _, ok := s.owners[c.ChannelID]; !ok {
					s.owners[c.ChannelID] = c.ID
				}
			}
		}
		s.mu.Lock()
		s.stats = stats
		s.statsState = StateWarm
		s.statsQuota = stats.QuotaExceeded
		s.mu.Unlock()
		s.logger.Infof(providers.TypeApp, "Stats snapshot restored: %d clients", len(stats.Clients))
	}

	var pl models.PulseSnapshot
	found, err = s.files.Load(s.pulsePath, &pl)
	if err != nil {
		errs = append(errs, fmt.Errorf("pulse snapshot: %w", err))
	} else if found {
		s.mu.Lock()
		s.pulseSnap = pl
		s.pulseState = StateWarm
		s.pulseQuota = pl.QuotaExceeded
		s.mu.Unlock()
		s.logger.Infof(providers.TypeApp, "Pulse snapshot restored: %d events", len(pl.Activities))
	}

	return errors.Join(errs...)
}

func (s *SyncService) Persist() error {
	s.mu.RLock()
	stats, statsState := s.stats, s.statsState
	pl, pulseState := s.pulseSnap, s.pulseState
	s.mu.RUnlock()

	var errs []error
	if statsState != StateCold {
		if err := s.files.Save(s.statsPath, &stats); err != nil {
			errs = append(errs, fmt.Errorf("stats snapshot: %w", err))
		}
	}
	if pulseState != StateCold {
		if err := s.files.Save(s.pulsePath, &pl); err != nil {
			errs = append(errs, fmt.Errorf("pulse snapshot: %w", err))
		}
	}
	return errors.Join(errs...)
}

func allFailed(trace []models.TraceEntry) bool {
	for _, t := range trace {
		if t.Status == models.TraceSuccess {
			return false
		}
	}
	return len(trace) > 0
}
