// Package alarms provides keyed fire-once deadlines. It is the backstop
// that guarantees a limit-reached signal even when no accrual tick is
// running at the moment the budget runs out.
package alarms

import (
	"sync"
	"time"
)

// Callback is invoked with the alarm's key at or after its deadline.
type Callback func(key string)

type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	callback Callback
	stopped  bool
}

func New(callback Callback) *Scheduler {
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		callback: callback,
	}
}

// Schedule arms the alarm identified by key to fire after delay. An
// already-armed alarm with the same key is cancelled first, so a key is
// never double-armed.
func (s *Scheduler) Schedule(key string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key)
	})
}

// Cancel disarms the alarm identified by key. Cancelling an unknown key
// is a no-op.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Stop disarms every alarm and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) fire(key string) {
	s.mu.Lock()
	// A fire can race a Cancel: the timer function may already be
	// running when Stop is called. Only deliver if the key is still
	// armed.
	_, armed := s.timers[key]
	if armed {
		delete(s.timers, key)
	}
	stopped := s.stopped
	s.mu.Unlock()

	if armed && !stopped {
		s.callback(key)
	}
}
