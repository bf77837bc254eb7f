// Package scheduler runs the periodic earnings maturation job.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/soundry/Royalty-Ledger-Backend/internal/service"
)

// Scheduler owns the cron runner for background ledger jobs.
type Scheduler struct {
	cron          *cron.Cron
	ledgerService *service.LedgerService
}

// New creates a Scheduler with the maturation job registered on the given
// cron expression (standard 5-field syntax).
func New(ledgerService *service.LedgerService, maturationSchedule string) (*Scheduler, error) {
	s := &Scheduler{
		cron:          cron.New(),
		ledgerService: ledgerService,
	}

	_, err := s.cron.AddFunc(maturationSchedule, s.runMaturation)
	if err != nil {
		return nil, fmt.Errorf("invalid maturation schedule %q: %w", maturationSchedule, err)
	}

	return s, nil
}

// Start begins running scheduled jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runMaturation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := s.ledgerService.MatureDue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Earnings maturation run failed: %v", err)
		return
	}
	log.Printf("Earnings maturation run completed: %d records rolled over", count)
}
