package models

// Settings represents application-wide settings
type Settings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether desktop notifications are sent at all
	DismissMinutes       int    `json:"dismiss_minutes"`       // how long a dismissed limit notification stays suppressed
	Timezone             string `json:"timezone"`              // IANA timezone name, or "Local" for the system timezone
}
