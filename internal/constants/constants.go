package constants

import "time"

const (
	AppName            = "sitebudget"
	DefaultKeyringUser = "database-connection"
	BridgeKeyringUser  = "bridge-secret"
	DefaultConfigPath  = "~/.config/sitebudget/sitebudget.db"
	Version            = "v0.3.0"

	// TimeFormat is the standard time-of-day format used throughout the
	// application (HH:MM).
	TimeFormat = "15:04"

	// TickInterval is the accrual cadence for a live session.
	TickInterval = time.Second

	// DefaultDismissDuration is how long a limit-reached notification
	// stays suppressed after the user dismisses it.
	DefaultDismissDuration = 5 * time.Minute

	// Bridge constants
	BridgeLockfileName = "sitebudget-bridge.lock"
	BridgeSecretHeader = "X-Sitebudget-Secret"

	// Notify constants
	NotifierLockfileName   = "sitebudget-notifier.lock"
	NotifierSecretHeader   = "X-Sitebudget-Tray-Secret"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.tmeadows.sitebudget"

	// Alarm key prefixes. Limit alarms are keyed by the bare hostname.
	DismissAlarmPrefix       = "dismiss_"
	ScheduleStartAlarmPrefix = "schedule_start_"
	ScheduleStopAlarmPrefix  = "schedule_stop_"

	// Default Settings Values
	DefaultNotificationsEnabled = true
	DefaultDismissMinutes       = 5
	DefaultTimezone             = "Local" // Use system local timezone by default
)

// MinutesToMs converts a budget expressed in minutes at rest into the
// millisecond scale used for comparisons against accumulated time.
func MinutesToMs(minutes int) int64 {
	return int64(minutes) * 60 * 1000
}
