package application

import (
	"context"
	"log"
	"time"
)

// Scheduler triggers reconciliation at a fixed interval. The core knows
// nothing about timers beyond this loop; manual runs through the HTTP
// trigger use the same RunReconciliation entry point and race safely.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(service *Service, interval time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{service: service, interval: interval, logger: logger}
}

// Start begins the scheduler loop and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil || s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.service.RunReconciliation(ctx); err != nil && s.logger != nil {
				s.logger.Printf("reconcile schedule error: %v", err)
			}
		}
	}
}
