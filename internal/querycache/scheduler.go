package querycache

import (
	"sync"
	"time"
)

// Scheduler calls fn every interval between Start and Stop. Each tick runs
// fn on its own goroutine so a slow fn never delays Stop.
type Scheduler struct {
	interval time.Duration
	fn       func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewScheduler(interval time.Duration, fn func()) *Scheduler {
	return &Scheduler{interval: interval, fn: fn}
}

// Start begins ticking. It is a no-op when already running or when the
// interval is not positive.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil || s.interval <= 0 {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Stop halts ticking and waits for the loop to exit.
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

// Running reports whether the scheduler is ticking.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			go s.fn()
		}
	}
}
