// Package job runs the coordinator's periodic maintenance tick — clearing
// expired backoffs, evicting stale domain state, and flagging stalled runs
// (§4.5 "Maintenance tick"). Any scheduler satisfies the "cron" interface;
// this one uses robfig/cron, the same ticker library the teacher's job
// scheduler builds on.
package job

import (
	"github.com/robfig/cron/v3"

	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/logger"
)

// MaintenanceScheduler ticks coordinator.Manager.MaintenanceTick on a cron
// schedule.
type MaintenanceScheduler struct {
	cron    *cron.Cron
	manager *coordinator.Manager
	log     logger.Interface
}

// NewMaintenanceScheduler builds a scheduler that has not yet started
// running spec; call Start to begin ticking.
func NewMaintenanceScheduler(manager *coordinator.Manager, log logger.Interface) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:    cron.New(),
		manager: manager,
		log:     log,
	}
}

// Start registers the maintenance tick on spec (standard 5-field cron
// syntax, e.g. "*/5 * * * *" for every five minutes) and starts the
// scheduler's own goroutine.
func (s *MaintenanceScheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runTick)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight tick to finish.
func (s *MaintenanceScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *MaintenanceScheduler) runTick() {
	sizes := s.manager.MaintenanceTick()
	for runID, size := range sizes {
		s.log.WithRunID(runID).Info("maintenance tick complete", logger.Int("queueSize", size))
	}
}
