// Package tracker implements the tracking and limit-enforcement state
// machine: it attributes wall-clock time to the active hostname,
// persists it, and fires reminder and limit-reached events exactly
// once per threshold crossing.
package tracker

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tmeadows/sitebudget/internal/clock"
	"github.com/tmeadows/sitebudget/internal/constants"
	apperrors "github.com/tmeadows/sitebudget/internal/errors"
	"github.com/tmeadows/sitebudget/internal/logger"
	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
	"github.com/tmeadows/sitebudget/internal/utils"
)

// Alarms is the fire-once deadline collaborator. The Tracker arms a
// deadline per hostname so a limit-reached signal is guaranteed even
// when no accrual tick is running at that moment.
type Alarms interface {
	Schedule(key string, delay time.Duration)
	Cancel(key string)
}

// Tracker owns the single live session and serializes every handler
// (tab events, alarm fires, operations, timer ticks) behind one mutex.
type Tracker struct {
	mu       sync.Mutex
	store    storage.Provider
	alarms   Alarms
	dispatch Dispatcher
	clk      clock.Clock

	session        *session
	ignored        map[string]struct{}
	activeTabID    int
	activeHostname string

	// disableTicker suppresses the background goroutine so tests can
	// drive ticks manually against a fake clock.
	disableTicker bool
}

func New(store storage.Provider, alarms Alarms, dispatch Dispatcher) *Tracker {
	return &Tracker{
		store:    store,
		alarms:   alarms,
		dispatch: dispatch,
		clk:      clock.SystemClock{},
		ignored:  make(map[string]struct{}),
	}
}

// ActiveSession reports the hostname currently being watched, if any.
func (t *Tracker) ActiveSession() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return "", false
	}
	return t.session.hostname, true
}

// HandleTabActivated is the trigger for tab switches. The prior
// session, if any, is finalized before the switch so none of the new
// site's time is attributed to the old one.
func (t *Tracker) HandleTabActivated(tabID int, rawURL string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handleTabLocked(tabID, rawURL)
}

// HandleNavigationComplete is the trigger for in-tab navigations. Only
// the currently active tab can change the watched hostname.
func (t *Tracker) HandleNavigationComplete(tabID int, rawURL string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tabID != t.activeTabID {
		return nil
	}
	return t.handleTabLocked(tabID, rawURL)
}

func (t *Tracker) handleTabLocked(tabID int, rawURL string) error {
	t.endSessionLocked()

	t.activeTabID = tabID
	hostname := hostnameOf(rawURL)
	t.activeHostname = hostname
	if hostname == "" {
		return nil
	}
	if _, ok := t.ignored[hostname]; ok {
		return nil
	}

	site, err := t.store.GetSite(hostname)
	if apperrors.IsNotFound(err) {
		t.dispatch.PromptTrack(hostname)
		return nil
	}
	if err != nil {
		return err
	}

	t.startSessionLocked(site)
	return nil
}

// startSessionLocked begins watching the given site if its state and
// schedule permit. Arms the limit deadline from the remaining budget,
// or goes straight to the limit-reached path when nothing remains.
func (t *Tracker) startSessionLocked(site models.Site) {
	if t.session != nil {
		return
	}
	if !site.IsTracking || site.IsPaused {
		return
	}

	if site.Schedule != nil {
		within, err := utils.WithinWindow(t.clk.Now(), site.Schedule.StartTime, site.Schedule.StopTime)
		if err != nil {
			logger.Warn("invalid schedule window", "hostname", site.Hostname, "error", err)
			return
		}
		if !within {
			// Window transitions are driven by the daily schedule
			// alarms, not per-tab.
			return
		}
	}

	if site.BaseLimitMinutes > 0 {
		remaining := site.RemainingMs()
		if remaining <= 0 {
			t.reachLimitLocked(site)
			return
		}
		t.alarms.Schedule(site.Hostname, time.Duration(remaining)*time.Millisecond)
	}

	sess := &session{
		hostname:  site.Hostname,
		tabID:     t.activeTabID,
		startedAt: t.clk.Now(),
		cancel:    make(chan struct{}),
	}
	t.session = sess
	if !t.disableTicker {
		go t.runTicker(sess)
	}
}

// endSessionLocked flushes the pending partial-tick accrual to the old
// hostname and stops the ticker. Must run before the active hostname
// changes.
func (t *Tracker) endSessionLocked() {
	if t.session == nil {
		return
	}
	sess := t.session
	t.accrueLocked(sess)
	t.stopTickingLocked()
}

func (t *Tracker) stopTickingLocked() {
	if t.session != nil {
		close(t.session.cancel)
		t.session = nil
	}
}

func (t *Tracker) runTicker(sess *session) {
	ticker := time.NewTicker(constants.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-sess.cancel:
			return
		case <-ticker.C:
			t.tickOnce(sess)
		}
	}
}

// tickOnce is the periodic accrual entry point. A tick that was already
// in flight when its session ended must be a no-op.
func (t *Tracker) tickOnce(sess *session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != sess {
		return
	}
	t.accrueLocked(sess)
}

// accrueLocked applies the elapsed time since the session's last mark
// to the active site. The record is re-read every tick: it can change
// underneath the session via user action, and a site that is missing,
// stopped, or paused accrues nothing.
func (t *Tracker) accrueLocked(sess *session) {
	now := t.clk.Now()
	delta := now.Sub(sess.startedAt).Milliseconds()
	if delta <= 0 {
		return
	}

	site, err := t.store.GetSite(sess.hostname)
	if err != nil {
		if apperrors.IsNotFound(err) {
			sess.startedAt = now
			return
		}
		// Leave startedAt untouched: the same delta is re-applied on
		// the next tick, so a failed read only delays durability.
		logger.Warn("accrual read failed, retrying next tick", "hostname", sess.hostname, "error", err)
		return
	}
	if !site.IsTracking || site.IsPaused {
		sess.startedAt = now
		return
	}

	prev := site.AccumulatedTimeMs
	site.AccumulatedTimeMs += delta
	if err := t.store.UpdateSite(site); err != nil {
		logger.Warn("accrual write failed, retrying next tick", "hostname", sess.hostname, "error", err)
		return
	}
	sess.startedAt = now

	t.dispatch.UpdateTime(site.Hostname, site.AccumulatedTimeMs)

	d := Evaluate(prev, site.AccumulatedTimeMs, site)
	if d.Reminder {
		t.dispatch.ShowCustomReminder(site.Hostname, d.ReminderText)
	}
	if d.LimitReached {
		t.reachLimitLocked(site)
	}
}

// reachLimitLocked is the enforcement path: pause the record, disarm
// the deadline, stop ticking, and deliver the event unless an active
// dismissal suppresses it. The pause transition is the once-only
// guard, so replays are harmless.
func (t *Tracker) reachLimitLocked(site models.Site) {
	if site.IsPaused {
		return
	}
	site.IsPaused = true
	if err := t.store.UpdateSite(site); err != nil {
		logger.Error("failed to persist limit pause", "hostname", site.Hostname, "error", err)
	}

	t.alarms.Cancel(site.Hostname)
	if t.session != nil && t.session.hostname == site.Hostname {
		t.stopTickingLocked()
	}

	now := t.clk.Now()
	if site.DismissedAt(now) {
		// Suppressed: arm re-delivery for when the dismissal lapses.
		t.alarms.Schedule(constants.DismissAlarmPrefix+site.Hostname, site.DismissedUntil.Sub(now))
		return
	}

	t.dispatch.ShowTimeLimitReached(LimitReachedEvent{
		Hostname:         site.Hostname,
		CurrentTimeMs:    site.AccumulatedTimeMs,
		BaseLimitMinutes: site.BaseLimitMinutes,
		ExtensionMinutes: site.ExtensionMinutes,
	})
}

// AddSiteRequest is the payload of the addSite operation.
type AddSiteRequest struct {
	Hostname     string
	LimitMinutes int
	Schedule     *models.Schedule
	Reminder     *models.Reminder
	Category     string
}

// AddSite creates a tracking record for a hostname the user opted in
// to. If the site is currently on screen, the session starts at once.
func (t *Tracker) AddSite(req AddSiteRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	site := models.Site{
		Hostname:         req.Hostname,
		IsTracking:       true,
		BaseLimitMinutes: req.LimitMinutes,
		Schedule:         req.Schedule,
		Reminder:         req.Reminder,
		Category:         req.Category,
		CreatedAt:        t.clk.Now(),
	}
	if err := site.Validate(); err != nil {
		return err
	}
	if err := t.store.AddSite(site); err != nil {
		return err
	}

	delete(t.ignored, site.Hostname)
	t.armScheduleAlarmsLocked(site)

	if t.activeHostname == site.Hostname {
		t.startSessionLocked(site)
	} else if site.BaseLimitMinutes > 0 {
		t.alarms.Schedule(site.Hostname, time.Duration(site.RemainingMs())*time.Millisecond)
	}

	return nil
}

// IgnoreSite suppresses tracking prompts for a hostname until the
// engine restarts. Nothing is persisted.
func (t *Tracker) IgnoreSite(hostname string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ignored[hostname] = struct{}{}
}

// SettingsUpdate is a partial edit of a site record. Nil fields are
// left unchanged; accumulated time is never part of an edit.
type SettingsUpdate struct {
	BaseLimitMinutes *int
	ExtensionMinutes *int
	Reminder         *models.Reminder
	ClearReminder    bool
	Schedule         *models.Schedule
	ClearSchedule    bool
	Category         *string
}

// UpdateSiteSettings merges an edit into the stored record and rearms
// the limit deadline. The record is re-read immediately before the
// merge so an edit never clobbers a concurrent accrual write.
func (t *Tracker) UpdateSiteSettings(hostname string, update SettingsUpdate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	site, err := t.store.GetSite(hostname)
	if err != nil {
		return err
	}

	if update.BaseLimitMinutes != nil {
		site.BaseLimitMinutes = *update.BaseLimitMinutes
	}
	if update.ExtensionMinutes != nil {
		site.ExtensionMinutes = *update.ExtensionMinutes
	}
	if update.ClearReminder {
		site.Reminder = nil
	} else if update.Reminder != nil {
		site.Reminder = update.Reminder
	}
	if update.ClearSchedule {
		site.Schedule = nil
	} else if update.Schedule != nil {
		site.Schedule = update.Schedule
	}
	if update.Category != nil {
		site.Category = *update.Category
	}

	if err := site.Validate(); err != nil {
		return err
	}
	if err := t.store.UpdateSite(site); err != nil {
		return err
	}

	t.rearmScheduleLocked(site)
	t.rearmLimitLocked(site)
	return nil
}

// StopTracking takes a site out of enforcement entirely, as opposed to
// pausing it. Accumulated time is kept.
func (t *Tracker) StopTracking(hostname string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.hostname == hostname {
		t.endSessionLocked()
	}

	site, err := t.store.GetSite(hostname)
	if err != nil {
		return err
	}
	site.IsTracking = false
	site.IsPaused = false
	if err := t.store.UpdateSite(site); err != nil {
		return err
	}

	t.cancelAllAlarmsLocked(hostname)
	return nil
}

// RerunTracking resets a site's clock to zero and resumes enforcement.
// Unless preserveSettings is set, granted extensions are revoked too.
func (t *Tracker) RerunTracking(hostname string, preserveSettings bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.hostname == hostname {
		t.stopTickingLocked()
	}

	site, err := t.store.GetSite(hostname)
	if err != nil {
		return err
	}
	site.IsTracking = true
	site.IsPaused = false
	site.AccumulatedTimeMs = 0
	site.DismissedUntil = nil
	if !preserveSettings {
		site.ExtensionMinutes = 0
	}
	if err := t.store.UpdateSite(site); err != nil {
		return err
	}

	t.alarms.Cancel(constants.DismissAlarmPrefix + hostname)
	if t.activeHostname == hostname {
		t.startSessionLocked(site)
	} else if site.BaseLimitMinutes > 0 {
		t.alarms.Schedule(hostname, time.Duration(site.RemainingMs())*time.Millisecond)
	}

	return nil
}

// ExtendTime grants additional budget after a limit-reached event,
// unpausing the site and rearming its deadline.
func (t *Tracker) ExtendTime(hostname string, additionalMinutes int) error {
	if additionalMinutes <= 0 {
		return fmt.Errorf("additional time must be a positive number of minutes")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	site, err := t.store.GetSite(hostname)
	if err != nil {
		return err
	}
	site.ExtensionMinutes += additionalMinutes
	site.IsPaused = false
	site.DismissedUntil = nil
	if err := t.store.UpdateSite(site); err != nil {
		return err
	}

	t.alarms.Cancel(constants.DismissAlarmPrefix + hostname)
	if remaining := site.RemainingMs(); remaining > 0 {
		if t.activeHostname == hostname {
			t.startSessionLocked(site)
		} else {
			t.alarms.Schedule(hostname, time.Duration(remaining)*time.Millisecond)
		}
	}

	return nil
}

// DismissNotification suppresses the limit-reached notification for
// the given duration. The site stays paused; re-delivery is armed for
// when the dismissal lapses.
func (t *Tracker) DismissNotification(hostname string, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("dismiss duration must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.hostname == hostname {
		t.endSessionLocked()
	}

	site, err := t.store.GetSite(hostname)
	if err != nil {
		return err
	}
	until := t.clk.Now().Add(duration)
	site.DismissedUntil = &until
	site.IsPaused = true
	if err := t.store.UpdateSite(site); err != nil {
		return err
	}

	t.alarms.Cancel(hostname)
	t.alarms.Schedule(constants.DismissAlarmPrefix+hostname, duration)
	return nil
}

// DeleteSite removes a record and everything armed for it.
func (t *Tracker) DeleteSite(hostname string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.hostname == hostname {
		t.stopTickingLocked()
	}
	t.cancelAllAlarmsLocked(hostname)
	return t.store.DeleteSite(hostname)
}

// HandleAlarm is the callback for the alarm scheduler. Every branch
// re-validates current state before acting: the record may have
// changed since the alarm was armed, and stale fires are dropped.
func (t *Tracker) HandleAlarm(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case strings.HasPrefix(key, constants.DismissAlarmPrefix):
		t.handleDismissAlarmLocked(strings.TrimPrefix(key, constants.DismissAlarmPrefix))
	case strings.HasPrefix(key, constants.ScheduleStartAlarmPrefix):
		t.handleScheduleEdgeLocked(strings.TrimPrefix(key, constants.ScheduleStartAlarmPrefix), true)
	case strings.HasPrefix(key, constants.ScheduleStopAlarmPrefix):
		t.handleScheduleEdgeLocked(strings.TrimPrefix(key, constants.ScheduleStopAlarmPrefix), false)
	default:
		t.handleLimitAlarmLocked(key)
	}
}

func (t *Tracker) handleLimitAlarmLocked(hostname string) {
	site, err := t.store.GetSite(hostname)
	if err != nil {
		return
	}
	if !site.IsTracking || site.IsPaused {
		return
	}
	if site.RemainingMs() > 0 {
		// Budget was extended or time was reset since arming.
		return
	}
	t.reachLimitLocked(site)
}

// handleDismissAlarmLocked re-delivers a suppressed limit-reached
// notification. The threshold is not re-evaluated; it was already
// crossed when the dismissal was granted.
func (t *Tracker) handleDismissAlarmLocked(hostname string) {
	site, err := t.store.GetSite(hostname)
	if err != nil {
		return
	}
	if !site.IsPaused || site.RemainingMs() > 0 {
		return
	}
	now := t.clk.Now()
	if site.DismissedAt(now) {
		t.alarms.Schedule(constants.DismissAlarmPrefix+hostname, site.DismissedUntil.Sub(now))
		return
	}
	t.dispatch.ShowTimeLimitReached(LimitReachedEvent{
		Hostname:         site.Hostname,
		CurrentTimeMs:    site.AccumulatedTimeMs,
		BaseLimitMinutes: site.BaseLimitMinutes,
		ExtensionMinutes: site.ExtensionMinutes,
	})
}

func (t *Tracker) handleScheduleEdgeLocked(hostname string, start bool) {
	site, err := t.store.GetSite(hostname)
	if err != nil || site.Schedule == nil {
		return
	}

	now := t.clk.Now()
	if start {
		t.dispatch.ScheduleStarted(hostname)
		t.rearmDailyLocked(constants.ScheduleStartAlarmPrefix+hostname, site.Schedule.StartTime, now)
		if t.activeHostname == hostname {
			t.startSessionLocked(site)
		}
	} else {
		t.dispatch.ScheduleStopped(hostname)
		t.rearmDailyLocked(constants.ScheduleStopAlarmPrefix+hostname, site.Schedule.StopTime, now)
		if t.session != nil && t.session.hostname == hostname {
			t.endSessionLocked()
		}
	}
}

// rearmDailyLocked schedules the next day's occurrence of a recurring
// schedule edge. The minute of slack skips the occurrence that just
// fired.
func (t *Tracker) rearmDailyLocked(key, timeOfDay string, now time.Time) {
	next, err := utils.NextOccurrence(now.Add(time.Minute), timeOfDay)
	if err != nil {
		logger.Warn("failed to rearm schedule alarm", "key", key, "error", err)
		return
	}
	t.alarms.Schedule(key, next.Sub(now))
}

func (t *Tracker) armScheduleAlarmsLocked(site models.Site) {
	if site.Schedule == nil {
		return
	}
	now := t.clk.Now()
	if next, err := utils.NextOccurrence(now, site.Schedule.StartTime); err == nil {
		t.alarms.Schedule(constants.ScheduleStartAlarmPrefix+site.Hostname, next.Sub(now))
	}
	if next, err := utils.NextOccurrence(now, site.Schedule.StopTime); err == nil {
		t.alarms.Schedule(constants.ScheduleStopAlarmPrefix+site.Hostname, next.Sub(now))
	}
}

func (t *Tracker) rearmScheduleLocked(site models.Site) {
	t.alarms.Cancel(constants.ScheduleStartAlarmPrefix + site.Hostname)
	t.alarms.Cancel(constants.ScheduleStopAlarmPrefix + site.Hostname)
	t.armScheduleAlarmsLocked(site)
}

// rearmLimitLocked re-derives the limit deadline after a settings
// change, firing the limit-reached path at once when the new budget is
// already exhausted.
func (t *Tracker) rearmLimitLocked(site models.Site) {
	t.alarms.Cancel(site.Hostname)
	if !site.IsTracking || site.IsPaused || site.BaseLimitMinutes <= 0 {
		return
	}
	remaining := site.RemainingMs()
	if remaining <= 0 {
		t.reachLimitLocked(site)
		return
	}
	t.alarms.Schedule(site.Hostname, time.Duration(remaining)*time.Millisecond)
}

func (t *Tracker) cancelAllAlarmsLocked(hostname string) {
	t.alarms.Cancel(hostname)
	t.alarms.Cancel(constants.DismissAlarmPrefix + hostname)
	t.alarms.Cancel(constants.ScheduleStartAlarmPrefix + hostname)
	t.alarms.Cancel(constants.ScheduleStopAlarmPrefix + hostname)
}

// ArmStoredAlarms arms the daily schedule alarms for every stored site
// that has a schedule. Called once at engine startup.
func (t *Tracker) ArmStoredAlarms() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sites, err := t.store.GetAllSites()
	if err != nil {
		return err
	}
	for _, site := range sites {
		if site.Schedule != nil && site.IsTracking {
			t.armScheduleAlarmsLocked(site)
		}
	}
	return nil
}

// Shutdown flushes and ends the live session.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endSessionLocked()
}
