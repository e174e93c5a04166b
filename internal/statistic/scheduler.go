package statistic

import (
	"context"
	"sync"
	"varietyd/internal/providers"
	"varietyd/internal/services"
	"varietyd/internal/statistic/interfaces"
	"varietyd/internal/structures"

	"github.com/roylee0704/gron"
)

// Scheduler keeps the current-year snapshot warm so that readers rarely hit
// an expired one.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	coordinator services.CoordinatorInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	interval := s.config.Snapshot.WarmInterval
	if interval <= 0 {
		s.logger.Infof(providers.TypeApp, "Snapshot warm-up disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(interval), s.warm)
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Warming current snapshot every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) warm() {
	if !s.opsMu.TryLock() {
		return
	}
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Snapshot.RequestTimeout)
	defer cancel()

	if _, err := s.coordinator.GetCurrentYear(ctx); err != nil {
		s.logger.Warnf(providers.TypeApp, "Warm-up failed: %s", err)
		return
	}
	s.logger.Debugf(providers.TypeApp, "Current snapshot warm")
}

func NewScheduler(config *structures.Config, logger providers.Logger, coordinator services.CoordinatorInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		coordinator: coordinator,
	}
}
