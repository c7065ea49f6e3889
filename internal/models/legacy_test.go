package models

import "testing"

func TestDecodeSiteCurrentShape(t *testing.T) {
	raw := []byte(`{
		"is_tracking": true,
		"is_paused": false,
		"accumulated_time_ms": 120000,
		"base_limit_minutes": 30,
		"extension_minutes": 15,
		"category": "News"
	}`)

	site, err := DecodeSite("example.com", raw)
	if err != nil {
		t.Fatalf("DecodeSite failed: %v", err)
	}
	if site.Hostname != "example.com" {
		t.Errorf("hostname = %q, want example.com", site.Hostname)
	}
	if site.BaseLimitMinutes != 30 || site.ExtensionMinutes != 15 {
		t.Errorf("limit = %d+%d, want 30+15", site.BaseLimitMinutes, site.ExtensionMinutes)
	}
	if site.AccumulatedTimeMs != 120000 {
		t.Errorf("accumulated = %d, want 120000", site.AccumulatedTimeMs)
	}
}

func TestDecodeSiteBareLimit(t *testing.T) {
	// Oldest extension shape: just a "limit" in minutes plus elapsed time.
	raw := []byte(`{"limit": 45, "time": 60000}`)

	site, err := DecodeSite("old.example.com", raw)
	if err != nil {
		t.Fatalf("DecodeSite failed: %v", err)
	}
	if site.BaseLimitMinutes != 45 {
		t.Errorf("base limit = %d, want 45", site.BaseLimitMinutes)
	}
	if site.AccumulatedTimeMs != 60000 {
		t.Errorf("accumulated = %d, want 60000", site.AccumulatedTimeMs)
	}
	if !site.IsTracking {
		t.Error("upgraded record should default to tracking")
	}
}

func TestDecodeSiteInitialLimitShape(t *testing.T) {
	raw := []byte(`{
		"initialLimit": 30,
		"totalExtendedTime": 10,
		"time": 500,
		"isTracking": true,
		"isPaused": true,
		"category": "Gaming",
		"reminder": {"text": "wrap it up", "percentage": 75},
		"schedule": {"startTime": "09:00", "stopTime": "17:00"}
	}`)

	site, err := DecodeSite("mid.example.com", raw)
	if err != nil {
		t.Fatalf("DecodeSite failed: %v", err)
	}
	if site.BaseLimitMinutes != 30 || site.ExtensionMinutes != 10 {
		t.Errorf("limit = %d+%d, want 30+10", site.BaseLimitMinutes, site.ExtensionMinutes)
	}
	if !site.IsPaused {
		t.Error("isPaused not carried over")
	}
	if site.Reminder == nil || site.Reminder.Percentage != 75 {
		t.Errorf("reminder not carried over: %+v", site.Reminder)
	}
	if site.Schedule == nil || site.Schedule.StartTime != "09:00" || site.Schedule.StopTime != "17:00" {
		t.Errorf("schedule not carried over: %+v", site.Schedule)
	}
	if site.Category != "Gaming" {
		t.Errorf("category = %q, want Gaming", site.Category)
	}
}

func TestDecodeSiteUnrecognized(t *testing.T) {
	if _, err := DecodeSite("example.com", []byte(`{"foo": 1}`)); err == nil {
		t.Error("expected error for unrecognized record shape")
	}
	if _, err := DecodeSite("example.com", []byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
