package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/tmeadows/sitebudget/internal/constants"
	"github.com/tmeadows/sitebudget/internal/models"
)

// ErrNotRunning is returned by FindRunning when no live engine is
// advertised in the config dir.
var ErrNotRunning = errors.New("no running engine found")

// Client talks to a running bridge server. CLI commands prefer it over
// direct store access so a live engine applies its alarm and session
// side effects.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewClient(port int, secret string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		secret:  secret,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// FindRunning locates a live engine via the bridge lockfile, verifying
// that the recorded pid still belongs to this application.
func FindRunning(configDir string) (*Client, error) {
	content, err := os.ReadFile(filepath.Join(configDir, constants.BridgeLockfileName))
	if err != nil {
		return nil, ErrNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("bridge lockfile is malformed")
	}
	port, err := strconv.Atoi(parts[0])
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port in bridge lockfile")
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid pid in bridge lockfile")
	}
	secret := parts[2]
	if secret == "" {
		return nil, fmt.Errorf("empty secret in bridge lockfile")
	}

	process, err := ps.FindProcess(pid)
	if err != nil || process == nil {
		return nil, ErrNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return nil, ErrNotRunning
	}

	return NewClient(port, secret), nil
}

func (c *Client) post(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.BridgeSecretHeader, c.secret)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("engine returned status %d", res.StatusCode)
	}
	if !out.Success {
		return errors.New(out.Error)
	}
	return nil
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set(constants.BridgeSecretHeader, c.secret)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("engine returned status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) AddSite(payload AddSitePayload) error {
	return c.post("/sites/add", payload)
}

func (c *Client) IgnoreSite(hostname string) error {
	return c.post("/sites/ignore", HostnamePayload{Hostname: hostname})
}

func (c *Client) UpdateSite(hostname string, patch SettingsPatch) error {
	return c.post("/sites/update", UpdateSitePayload{Hostname: hostname, Settings: patch})
}

func (c *Client) StopTracking(hostname string) error {
	return c.post("/sites/stop", HostnamePayload{Hostname: hostname})
}

func (c *Client) RerunTracking(hostname string, preserveSettings bool) error {
	return c.post("/sites/rerun", RerunPayload{Hostname: hostname, PreserveSettings: preserveSettings})
}

func (c *Client) ExtendTime(hostname string, additionalMinutes int) error {
	return c.post("/sites/extend", ExtendPayload{Hostname: hostname, AdditionalTime: additionalMinutes})
}

func (c *Client) DismissNotification(hostname string, minutes int) error {
	return c.post("/sites/dismiss", DismissPayload{Hostname: hostname, DismissDuration: minutes})
}

func (c *Client) DeleteSite(hostname string) error {
	return c.post("/sites/delete", HostnamePayload{Hostname: hostname})
}

func (c *Client) Sites() ([]models.Site, error) {
	var out struct {
		Success bool          `json:"success"`
		Error   string        `json:"error"`
		Sites   []models.Site `json:"sites"`
	}
	if err := c.get("/sites", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, errors.New(out.Error)
	}
	return out.Sites, nil
}
