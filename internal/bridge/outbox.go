package bridge

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tmeadows/sitebudget/internal/tracker"
)

// maxPending bounds the outbox; when the client stops draining, the
// oldest messages are dropped first.
const maxPending = 1000

// Message is one queued engine-to-page event, drained by the browser
// client via GET /notifications.
type Message struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type promptTrackPayload struct {
	Hostname string `json:"hostname"`
}

type updateTimePayload struct {
	Hostname string `json:"hostname"`
	TimeMs   int64  `json:"time"`
}

type reminderPayload struct {
	Hostname string `json:"hostname"`
	Message  string `json:"message"`
}

type schedulePayload struct {
	Hostname string `json:"hostname"`
}

// Outbox queues engine events for the polling client. It implements
// the engine's dispatch interface; enqueueing never blocks, so it is
// safe to call with the tracker lock held.
type Outbox struct {
	mu      sync.Mutex
	pending []Message
	// index of the pending updateTime message per hostname, so a slow
	// drain sees the latest total instead of one message per tick
	updateIdx map[string]int
}

func NewOutbox() *Outbox {
	return &Outbox{updateIdx: make(map[string]int)}
}

// Drain returns all pending messages in arrival order and clears the
// queue.
func (o *Outbox) Drain() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	o.updateIdx = make(map[string]int)
	return out
}

func (o *Outbox) enqueue(msgType string, payload any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enqueueLocked(msgType, payload)
}

func (o *Outbox) enqueueLocked(msgType string, payload any) {
	if len(o.pending) >= maxPending {
		dropped := o.pending[0]
		o.pending = o.pending[1:]
		if dropped.Type == "updateTime" {
			delete(o.updateIdx, dropped.Payload.(updateTimePayload).Hostname)
		}
		for h, i := range o.updateIdx {
			o.updateIdx[h] = i - 1
		}
	}
	o.pending = append(o.pending, Message{
		ID:      uuid.NewString(),
		Type:    msgType,
		Payload: payload,
	})
}

func (o *Outbox) PromptTrack(hostname string) {
	o.enqueue("promptTrack", promptTrackPayload{Hostname: hostname})
}

func (o *Outbox) UpdateTime(hostname string, timeMs int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i, ok := o.updateIdx[hostname]; ok {
		o.pending[i].Payload = updateTimePayload{Hostname: hostname, TimeMs: timeMs}
		return
	}
	o.enqueueLocked("updateTime", updateTimePayload{Hostname: hostname, TimeMs: timeMs})
	o.updateIdx[hostname] = len(o.pending) - 1
}

func (o *Outbox) ShowTimeLimitReached(ev tracker.LimitReachedEvent) {
	o.enqueue("showTimeLimitReached", ev)
}

func (o *Outbox) ShowCustomReminder(hostname, message string) {
	o.enqueue("showCustomReminder", reminderPayload{Hostname: hostname, Message: message})
}

func (o *Outbox) ScheduleStarted(hostname string) {
	o.enqueue("scheduleStarted", schedulePayload{Hostname: hostname})
}

func (o *Outbox) ScheduleStopped(hostname string) {
	o.enqueue("scheduleStopped", schedulePayload{Hostname: hostname})
}
