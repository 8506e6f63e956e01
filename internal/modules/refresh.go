package modules

import (
	"sync"
	"time"
)

// DefaultRefreshInterval matches the platform front-end's polling cadence.
const DefaultRefreshInterval = 3 * time.Second

// Scheduler runs a fixed-interval background task for catalog
// re-synchronization. The tick callback decides whether refreshing is safe
// right now; the scheduler only owns the timer and its cancellation, tied
// to the module view's lifecycle.
type Scheduler struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler{interval: interval}
}

// Start begins ticking. A second Start replaces the previous loop.
func (s *Scheduler) Start(tick func()) {
	s.Stop()
	s.mu.Lock()
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				tick()
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight tick, if any, to
// return. Safe to call repeatedly or without a prior Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
