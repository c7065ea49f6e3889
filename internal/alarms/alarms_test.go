package alarms

import (
	"sync"
	"testing"
	"time"
)

// recorder collects fired keys behind a mutex so tests can poll safely.
type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) record(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, key)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestScheduleFires(t *testing.T) {
	rec := &recorder{}
	s := New(rec.record)
	defer s.Stop()

	s.Schedule("example.com", 10*time.Millisecond)

	if !waitFor(t, time.Second, func() bool { return len(rec.snapshot()) == 1 }) {
		t.Fatal("alarm did not fire")
	}
	if got := rec.snapshot()[0]; got != "example.com" {
		t.Errorf("fired key = %q, want example.com", got)
	}
}

func TestCancelPreventsFire(t *testing.T) {
	rec := &recorder{}
	s := New(rec.record)
	defer s.Stop()

	s.Schedule("example.com", 30*time.Millisecond)
	s.Cancel("example.com")

	time.Sleep(80 * time.Millisecond)
	if fired := rec.snapshot(); len(fired) != 0 {
		t.Errorf("cancelled alarm fired: %v", fired)
	}
}

func TestRescheduleReplacesDeadline(t *testing.T) {
	rec := &recorder{}
	s := New(rec.record)
	defer s.Stop()

	// The first deadline would fire almost immediately; rescheduling
	// must replace it, not stack a second alarm.
	s.Schedule("example.com", 10*time.Millisecond)
	s.Schedule("example.com", 50*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	if fired := rec.snapshot(); len(fired) != 1 {
		t.Errorf("expected exactly one fire after reschedule, got %v", fired)
	}
}

func TestStopDisarmsAll(t *testing.T) {
	rec := &recorder{}
	s := New(rec.record)

	s.Schedule("a.example.com", 20*time.Millisecond)
	s.Schedule("b.example.com", 20*time.Millisecond)
	s.Stop()

	// Scheduling after Stop is rejected.
	s.Schedule("c.example.com", time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	if fired := rec.snapshot(); len(fired) != 0 {
		t.Errorf("alarms fired after Stop: %v", fired)
	}
}

func TestIndependentKeys(t *testing.T) {
	rec := &recorder{}
	s := New(rec.record)
	defer s.Stop()

	s.Schedule("a.example.com", 10*time.Millisecond)
	s.Schedule("b.example.com", 10*time.Millisecond)
	s.Cancel("a.example.com")

	if !waitFor(t, time.Second, func() bool { return len(rec.snapshot()) == 1 }) {
		t.Fatal("surviving alarm did not fire")
	}
	if got := rec.snapshot()[0]; got != "b.example.com" {
		t.Errorf("fired key = %q, want b.example.com", got)
	}
}
