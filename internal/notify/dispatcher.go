package notify

import (
	"fmt"

	"github.com/tmeadows/sitebudget/internal/logger"
	"github.com/tmeadows/sitebudget/internal/tracker"
	"github.com/tmeadows/sitebudget/internal/utils"
)

// Dispatcher adapts the Notifier to the engine's event interface,
// rendering the events that warrant a desktop notification. Prompt and
// time-update events stay on the bridge; they are page UI, not desktop
// UI. Delivery failures are logged and swallowed so a missing tray app
// never stalls the engine.
type Dispatcher struct {
	notifier *Notifier
}

func NewDispatcher(n *Notifier) *Dispatcher {
	return &Dispatcher{notifier: n}
}

func (d *Dispatcher) PromptTrack(hostname string) {}

func (d *Dispatcher) UpdateTime(hostname string, timeMs int64) {}

func (d *Dispatcher) ShowTimeLimitReached(ev tracker.LimitReachedEvent) {
	text := fmt.Sprintf("Time limit reached for %s (%s spent)", ev.Hostname, utils.FormatDurationMs(ev.CurrentTimeMs))
	d.send(text)
}

func (d *Dispatcher) ShowCustomReminder(hostname, message string) {
	d.send(fmt.Sprintf("%s: %s", hostname, message))
}

func (d *Dispatcher) ScheduleStarted(hostname string) {
	d.send(fmt.Sprintf("Tracking window started for %s", hostname))
}

func (d *Dispatcher) ScheduleStopped(hostname string) {
	d.send(fmt.Sprintf("Tracking window ended for %s", hostname))
}

func (d *Dispatcher) send(text string) {
	if err := d.notifier.Notify(text); err != nil {
		logger.Warn("desktop notification not delivered", "error", err)
	}
}
