package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// The browser-extension exports this engine replaced went through
// several record shapes: the oldest kept a bare "limit" field, later
// ones split it into "initialLimit" + "totalExtendedTime" and stored
// elapsed time under "time". DecodeSite accepts any of them and
// upgrades to the current shape on first read.

type legacySite struct {
	Limit             *int       `json:"limit"`
	InitialLimit      *int       `json:"initialLimit"`
	TotalExtendedTime *int       `json:"totalExtendedTime"`
	Time              *int64     `json:"time"`
	IsTracking        *bool      `json:"isTracking"`
	IsPaused          *bool      `json:"isPaused"`
	Category          string     `json:"category"`
	Reminder          *Reminder  `json:"reminder"`
	Schedule          *struct {
		StartTime string `json:"startTime"`
		StopTime  string `json:"stopTime"`
	} `json:"schedule"`
}

// DecodeSite parses a stored site record, upgrading legacy layouts.
func DecodeSite(hostname string, raw []byte) (Site, error) {
	var site Site
	if err := json.Unmarshal(raw, &site); err != nil {
		return Site{}, fmt.Errorf("failed to parse site record for %q: %w", hostname, err)
	}
	site.Hostname = hostname

	// Current-shape records carry a base limit or a schedule; anything
	// else is a legacy layout.
	if site.BaseLimitMinutes > 0 || site.Schedule != nil {
		return site, nil
	}

	var legacy legacySite
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return Site{}, fmt.Errorf("failed to parse legacy site record for %q: %w", hostname, err)
	}
	if legacy.Limit == nil && legacy.InitialLimit == nil && legacy.Schedule == nil {
		return Site{}, fmt.Errorf("unrecognized site record shape for %q", hostname)
	}

	upgraded := Site{
		Hostname:   hostname,
		IsTracking: true,
		Category:   legacy.Category,
		Reminder:   legacy.Reminder,
		CreatedAt:  time.Now(),
	}
	switch {
	case legacy.InitialLimit != nil:
		upgraded.BaseLimitMinutes = *legacy.InitialLimit
	case legacy.Limit != nil:
		upgraded.BaseLimitMinutes = *legacy.Limit
	}
	if legacy.TotalExtendedTime != nil {
		upgraded.ExtensionMinutes = *legacy.TotalExtendedTime
	}
	if legacy.Time != nil {
		upgraded.AccumulatedTimeMs = *legacy.Time
	}
	if legacy.IsTracking != nil {
		upgraded.IsTracking = *legacy.IsTracking
	}
	if legacy.IsPaused != nil {
		upgraded.IsPaused = *legacy.IsPaused
	}
	if legacy.Schedule != nil {
		upgraded.Schedule = &Schedule{
			StartTime: legacy.Schedule.StartTime,
			StopTime:  legacy.Schedule.StopTime,
		}
	}

	return upgraded, nil
}
