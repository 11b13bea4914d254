package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs the ingestor periodically on a single goroutine, so runs
// never overlap: a trigger arriving mid-run is served after the current run
// finishes.
type Scheduler struct {
	ingestor *Ingestor
	interval time.Duration
	trigger  chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(ingestor *Ingestor, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		ingestor: ingestor,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.run()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.run()
			case <-s.trigger:
				s.run()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// TriggerNow requests an extra ingestion run. Returns false when a trigger
// is already pending.
func (s *Scheduler) TriggerNow() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) run() {
	if err := s.ingestor.Run(s.ctx); err != nil {
		slog.Warn("Ingestion run aborted", "error", err)
	}
}
