package syncer

import (
	"context"
	"studiosync/internal/providers"
	"studiosync/internal/services"
	"studiosync/internal/structures"
	"studiosync/internal/syncer/interfaces"
	"sync"
	"time"
)

// Scheduler drives the two synchronization loops. Each loop is a
// self-rescheduling timer: the next cycle is armed only after the current one
// completes, so a slow cycle can never overlap itself and forward progress is
// guaranteed even when one run exceeds its interval.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.SyncServiceInterface

	mu         sync.Mutex
	statsTimer *time.Timer
	pulseTimer *time.Timer
	stopped    bool
}

func (s *Scheduler) Init() {
	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()

	go s.runStats()
	go s.runPulse()
}

func (s *Scheduler) runStats() {
	if err := s.service.SyncStats(context.Background()); err != nil {
		s.logger.Errorf(providers.TypeSync, "Stats cycle failed: %s", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.statsTimer = time.AfterFunc(s.config.Sync.StatsInterval, s.runStats)
	}
}

func (s *Scheduler) runPulse() {
	if err := s.service.SyncPulse(context.Background()); err != nil {
		s.logger.Errorf(providers.TypeSync, "Pulse cycle failed: %s", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.pulseTimer = time.AfterFunc(s.config.Sync.PulseInterval, s.runPulse)
	}
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.statsTimer != nil {
		s.statsTimer.Stop()
	}
	if s.pulseTimer != nil {
		s.pulseTimer.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.service.Restore()
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting snapshots to disk...")
	err := s.service.Persist()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.SyncServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
	}
}
