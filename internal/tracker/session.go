package tracker

import (
	"net/url"
	"strings"
	"time"
)

// session is the ephemeral record of which hostname is being watched
// and since when. Exactly one is live at a time; it is owned by the
// Tracker and never persisted. The ticker goroutine holds a reference
// to its own session so a tick that outlives a tab switch can detect
// it is stale.
type session struct {
	hostname  string
	tabID     int
	startedAt time.Time
	cancel    chan struct{}
}

// hostnameOf extracts the tracking key from a page URL. Returns ""
// for URLs that have no host (about:blank, file paths, malformed
// input), which callers treat as "nothing to track".
func hostnameOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	// Bare hostnames ("example.com") parse as paths, not hosts.
	if host == "" && !strings.Contains(rawURL, "/") && strings.Contains(rawURL, ".") {
		return rawURL
	}
	return host
}
