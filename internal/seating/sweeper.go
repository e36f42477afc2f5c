package seating

import (
	"context"
	"sync"
	"time"

	"cinerama/pkg/logger"
)

// Sweeper periodically releases lapsed holds so abandoned reservations
// return to the pool even when no request ever touches them again.
type Sweeper struct {
	service  Service
	interval time.Duration
	log      *logger.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewSweeper creates a sweeper running at the given interval.
func NewSweeper(service Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		log:      logger.GetDefault().WithComponent("seat-sweeper"),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop. It returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.log.Info("seat sweeper started", "interval", s.interval)
}

// Stop signals the loop to exit and waits for the in-flight sweep.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.log.Info("seat sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep runs one pass. Errors are logged and swallowed; the next tick
// retries.
func (s *Sweeper) sweep(ctx context.Context) {
	released, err := s.service.SweepExpired(ctx)
	if err != nil {
		s.log.Error("sweep failed", "error", err)
		return
	}
	if released > 0 {
		s.log.Info("expired holds released", "count", released)
	}
}
