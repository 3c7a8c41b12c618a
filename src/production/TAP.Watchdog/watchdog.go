package watchdog

import (
	"sync"
	"time"
)

// Set is a collection of per-tap one-shot timers sharing one timeout
// and one fire callback. Kicking a tap cancels and replaces any pending
// timer for it, so at most one timer per tap exists and a quiet period
// of exactly one timeout separates the last kick from the firing.
//
// The callback runs on the timer's goroutine; it must do its own
// locking and must not call back into the Set for the same tap
// synchronously while holding locks the kicker holds.
type Set struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	timeout time.Duration
	fire    func(tapID string)
	stopped bool
}

// NewSet creates a watchdog set. fire runs once per expiry.
func NewSet(timeout time.Duration, fire func(tapID string)) *Set {
	return &Set{
		timers:  make(map[string]*time.Timer),
		timeout: timeout,
		fire:    fire,
	}
}

// Kick restarts the tap's watchdog, replacing any pending timer
func (s *Set) Kick(tapID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[tapID]; ok {
		t.Stop()
	}
	s.timers[tapID] = time.AfterFunc(s.timeout, func() {
		s.expired(tapID)
	})
}

func (s *Set) expired(tapID string) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, tapID)
	s.mu.Unlock()

	s.fire(tapID)
}

// Cancel stops the tap's pending watchdog, if any
func (s *Set) Cancel(tapID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[tapID]; ok {
		t.Stop()
		delete(s.timers, tapID)
	}
}

// Pending reports whether the tap has a watchdog armed
func (s *Set) Pending(tapID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[tapID]
	return ok
}

// Shutdown cancels every timer and refuses further kicks
func (s *Set) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for tapID, t := range s.timers {
		t.Stop()
		delete(s.timers, tapID)
	}
}
