package utils

import (
	"testing"
	"time"
)

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeToMinutes(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeToMinutes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTimeToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestWithinWindow(t *testing.T) {
	at := func(hour, min int) time.Time {
		return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		now   time.Time
		start string
		stop  string
		want  bool
	}{
		{"before window", at(8, 0), "09:00", "17:00", false},
		{"at start", at(9, 0), "09:00", "17:00", true},
		{"inside", at(10, 0), "09:00", "17:00", true},
		{"at stop is excluded", at(17, 0), "09:00", "17:00", false},
		{"after window", at(20, 0), "09:00", "17:00", false},
		{"overnight inside late", at(23, 0), "22:00", "06:00", true},
		{"overnight inside early", at(5, 59), "22:00", "06:00", true},
		{"overnight outside", at(12, 0), "22:00", "06:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithinWindow(tt.now, tt.start, tt.stop)
			if err != nil {
				t.Fatalf("WithinWindow returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("WithinWindow(%v, %s, %s) = %v, want %v", tt.now, tt.start, tt.stop, got, tt.want)
			}
		})
	}

	if _, err := WithinWindow(at(9, 0), "bad", "17:00"); err == nil {
		t.Error("expected error for malformed start time")
	}
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

	next, err := NextOccurrence(now, "17:00")
	if err != nil {
		t.Fatalf("NextOccurrence returned error: %v", err)
	}
	if next.Day() != 2 || next.Hour() != 17 {
		t.Errorf("expected same-day 17:00, got %v", next)
	}

	next, err = NextOccurrence(now, "09:00")
	if err != nil {
		t.Fatalf("NextOccurrence returned error: %v", err)
	}
	if next.Day() != 3 || next.Hour() != 9 {
		t.Errorf("expected next-day 09:00, got %v", next)
	}
}

func TestFormatDurationMs(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{45_000, "45s"},
		{90_000, "1m 30s"},
		{3_723_000, "1h 2m 3s"},
	}
	for _, tt := range tests {
		if got := FormatDurationMs(tt.ms); got != tt.want {
			t.Errorf("FormatDurationMs(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
