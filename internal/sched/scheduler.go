// Package sched implements the auto-refresh scheduler. At most one timer is
// live at any moment; arming a new interval always tears down the previous
// one first.
package sched

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler drives a callback at a fixed interval. Interval 0 means no
// periodic refresh; manual refresh stays available regardless.
type Scheduler struct {
	callback func()
	logger   zerolog.Logger

	mu       sync.Mutex
	interval time.Duration
	stop     chan struct{}
}

// NewScheduler creates a scheduler invoking callback on every tick.
func NewScheduler(callback func(), logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		callback: callback,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Set replaces the refresh interval. The previous timer, if any, is stopped
// before a new one is armed. Zero or negative seconds disables periodic
// refresh.
func (s *Scheduler) Set(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if seconds <= 0 {
		s.interval = 0
		s.logger.Debug().Msg("periodic refresh disabled")
		return
	}

	s.interval = time.Duration(seconds) * time.Second
	s.stop = make(chan struct{})
	go s.run(s.interval, s.stop)

	s.logger.Debug().Int("seconds", seconds).Msg("periodic refresh armed")
}

// Stop disables periodic refresh.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.interval = 0
}

// Interval returns the currently armed interval, zero when disabled.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Active reports whether a timer is live.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// stopLocked tears down the live timer. Caller holds the mutex.
func (s *Scheduler) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// run is the timer goroutine. It exits when its stop channel closes, so a
// superseded timer can never fire alongside its replacement.
func (s *Scheduler) run(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.callback()
		case <-stop:
			return
		}
	}
}
