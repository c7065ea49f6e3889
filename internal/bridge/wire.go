package bridge

import "github.com/tmeadows/sitebudget/internal/models"

// Wire shapes follow the extension message contract (camelCase). They
// are shared by the server and the Client.

type TabEvent struct {
	TabID int    `json:"tabId"`
	URL   string `json:"url"`
}

type HostnamePayload struct {
	Hostname string `json:"hostname"`
}

type ScheduleSpec struct {
	StartTime string `json:"startTime"`
	StopTime  string `json:"stopTime"`
}

func (s *ScheduleSpec) model() *models.Schedule {
	if s == nil {
		return nil
	}
	return &models.Schedule{StartTime: s.StartTime, StopTime: s.StopTime}
}

type ReminderSpec struct {
	Text       string `json:"text"`
	Percentage int    `json:"percentage"`
}

func (r *ReminderSpec) model() *models.Reminder {
	if r == nil {
		return nil
	}
	return &models.Reminder{Text: r.Text, Percentage: r.Percentage}
}

type AddSitePayload struct {
	Hostname string        `json:"hostname"`
	Limit    int           `json:"limit"`
	Schedule *ScheduleSpec `json:"schedule,omitempty"`
	Reminder *ReminderSpec `json:"reminder,omitempty"`
	Category string        `json:"category,omitempty"`
}

type SettingsPatch struct {
	BaseLimitMinutes *int          `json:"baseLimitMinutes,omitempty"`
	ExtensionMinutes *int          `json:"extensionMinutes,omitempty"`
	Reminder         *ReminderSpec `json:"reminder,omitempty"`
	ClearReminder    bool          `json:"clearReminder,omitempty"`
	Schedule         *ScheduleSpec `json:"schedule,omitempty"`
	ClearSchedule    bool          `json:"clearSchedule,omitempty"`
	Category         *string       `json:"category,omitempty"`
}

type UpdateSitePayload struct {
	Hostname string        `json:"hostname"`
	Settings SettingsPatch `json:"settings"`
}

type RerunPayload struct {
	Hostname         string `json:"hostname"`
	PreserveSettings bool   `json:"preserveSettings"`
}

type ExtendPayload struct {
	Hostname       string `json:"hostname"`
	AdditionalTime int    `json:"additionalTime"`
}

type DismissPayload struct {
	Hostname        string `json:"hostname"`
	DismissDuration int    `json:"dismissDuration"` // minutes
}
