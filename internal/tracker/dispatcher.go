package tracker

// LimitReachedEvent carries the payload of a limit-reached
// notification.
type LimitReachedEvent struct {
	Hostname         string `json:"hostname"`
	CurrentTimeMs    int64  `json:"currentTime"`
	BaseLimitMinutes int    `json:"baseLimitMinutes"`
	ExtensionMinutes int    `json:"extensionMinutes"`
}

// Dispatcher fans engine events out to the UI collaborators (page
// overlay, popup, desktop notifications). Implementations must not
// block: they are called with the tracker lock held.
type Dispatcher interface {
	// PromptTrack asks the user to opt in to tracking a newly visited
	// hostname.
	PromptTrack(hostname string)
	// UpdateTime streams the freshly-accrued total for live UI refresh.
	UpdateTime(hostname string, timeMs int64)
	// ShowTimeLimitReached renders the blocking overlay.
	ShowTimeLimitReached(ev LimitReachedEvent)
	// ShowCustomReminder renders the transient reminder banner.
	ShowCustomReminder(hostname, message string)
	// ScheduleStarted and ScheduleStopped broadcast daily-window
	// transitions for the surrounding UI to confirm with the user.
	ScheduleStarted(hostname string)
	ScheduleStopped(hostname string)
}

// MultiDispatcher fans every event out to several dispatchers in order.
type MultiDispatcher []Dispatcher

func (m MultiDispatcher) PromptTrack(hostname string) {
	for _, d := range m {
		d.PromptTrack(hostname)
	}
}

func (m MultiDispatcher) UpdateTime(hostname string, timeMs int64) {
	for _, d := range m {
		d.UpdateTime(hostname, timeMs)
	}
}

func (m MultiDispatcher) ShowTimeLimitReached(ev LimitReachedEvent) {
	for _, d := range m {
		d.ShowTimeLimitReached(ev)
	}
}

func (m MultiDispatcher) ShowCustomReminder(hostname, message string) {
	for _, d := range m {
		d.ShowCustomReminder(hostname, message)
	}
}

func (m MultiDispatcher) ScheduleStarted(hostname string) {
	for _, d := range m {
		d.ScheduleStarted(hostname)
	}
}

func (m MultiDispatcher) ScheduleStopped(hostname string) {
	for _, d := range m {
		d.ScheduleStopped(hostname)
	}
}
