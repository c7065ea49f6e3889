// Package bridge exposes the engine to browser-side collaborators over
// a loopback HTTP server. Inbound requests carry tab events and the
// page-to-engine operations; outbound events accumulate in an outbox
// the client polls. Every request must present the shared secret.
package bridge

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/tmeadows/sitebudget/internal/constants"
	"github.com/tmeadows/sitebudget/internal/logger"
	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
	"github.com/tmeadows/sitebudget/internal/tracker"
)

type Server struct {
	tracker   *tracker.Tracker
	store     storage.Provider
	outbox    *Outbox
	secret    string
	configDir string

	httpSrv  *http.Server
	listener net.Listener
}

func NewServer(t *tracker.Tracker, store storage.Provider, outbox *Outbox, secret string, configDir string) *Server {
	s := &Server{
		tracker:   t,
		store:     store,
		outbox:    outbox,
		secret:    secret,
		configDir: configDir,
	}
	s.httpSrv = &http.Server{
		Handler:           s.auth(s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start binds an ephemeral loopback port, advertises it in the
// lockfile, and serves until Close. Returns the bound port.
func (s *Server) Start() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to bind bridge listener: %w", err)
	}
	s.listener = ln
	port := ln.Addr().(*net.TCPAddr).Port

	if _, err := WriteLockfile(s.configDir, port, os.Getpid(), s.secret); err != nil {
		ln.Close()
		return 0, err
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("bridge server stopped", "error", err)
		}
	}()

	logger.Info("bridge listening", "port", port)
	return port, nil
}

func (s *Server) Close() error {
	if err := RemoveLockfile(s.configDir); err != nil {
		logger.Warn("failed to remove bridge lockfile", "error", err)
	}
	if s.httpSrv != nil {
		return s.httpSrv.Close()
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /events/tab-activated", s.handleTabActivated)
	mux.HandleFunc("POST /events/navigation-complete", s.handleNavigationComplete)
	mux.HandleFunc("GET /notifications", s.handleNotifications)

	mux.HandleFunc("GET /sites", s.handleListSites)
	mux.HandleFunc("POST /sites/add", s.handleAddSite)
	mux.HandleFunc("POST /sites/ignore", s.handleIgnoreSite)
	mux.HandleFunc("POST /sites/update", s.handleUpdateSite)
	mux.HandleFunc("POST /sites/stop", s.handleStopTracking)
	mux.HandleFunc("POST /sites/rerun", s.handleRerunTracking)
	mux.HandleFunc("POST /sites/extend", s.handleExtendTime)
	mux.HandleFunc("POST /sites/dismiss", s.handleDismiss)
	mux.HandleFunc("POST /sites/delete", s.handleDeleteSite)

	mux.HandleFunc("GET /categories", s.handleListCategories)

	return mux
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(constants.BridgeSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode bridge response", "error", err)
	}
}

func writeResult(w http.ResponseWriter, err error) {
	if err != nil {
		writeJSON(w, http.StatusOK, response{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "malformed request body"})
		return false
	}
	return true
}

func (s *Server) handleTabActivated(w http.ResponseWriter, r *http.Request) {
	var req TabEvent
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.HandleTabActivated(req.TabID, req.URL))
}

func (s *Server) handleNavigationComplete(w http.ResponseWriter, r *http.Request) {
	var req TabEvent
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.HandleNavigationComplete(req.TabID, req.URL))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Success  bool      `json:"success"`
		Messages []Message `json:"messages"`
	}{Success: true, Messages: s.outbox.Drain()})
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.store.GetAllSites()
	if err != nil {
		writeJSON(w, http.StatusOK, response{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Sites   []models.Site `json:"sites"`
	}{Success: true, Sites: sites})
}

func (s *Server) handleAddSite(w http.ResponseWriter, r *http.Request) {
	var req AddSitePayload
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.AddSite(tracker.AddSiteRequest{
		Hostname:     req.Hostname,
		LimitMinutes: req.Limit,
		Schedule:     req.Schedule.model(),
		Reminder:     req.Reminder.model(),
		Category:     req.Category,
	}))
}

func (s *Server) handleIgnoreSite(w http.ResponseWriter, r *http.Request) {
	var req HostnamePayload
	if !decode(w, r, &req) {
		return
	}
	s.tracker.IgnoreSite(req.Hostname)
	writeResult(w, nil)
}

func (s *Server) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	var req UpdateSitePayload
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.UpdateSiteSettings(req.Hostname, tracker.SettingsUpdate{
		BaseLimitMinutes: req.Settings.BaseLimitMinutes,
		ExtensionMinutes: req.Settings.ExtensionMinutes,
		Reminder:         req.Settings.Reminder.model(),
		ClearReminder:    req.Settings.ClearReminder,
		Schedule:         req.Settings.Schedule.model(),
		ClearSchedule:    req.Settings.ClearSchedule,
		Category:         req.Settings.Category,
	}))
}

func (s *Server) handleStopTracking(w http.ResponseWriter, r *http.Request) {
	var req HostnamePayload
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.StopTracking(req.Hostname))
}

func (s *Server) handleRerunTracking(w http.ResponseWriter, r *http.Request) {
	var req RerunPayload
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.RerunTracking(req.Hostname, req.PreserveSettings))
}

func (s *Server) handleExtendTime(w http.ResponseWriter, r *http.Request) {
	var req ExtendPayload
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.ExtendTime(req.Hostname, req.AdditionalTime))
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req DismissPayload
	if !decode(w, r, &req) {
		return
	}
	minutes := req.DismissDuration
	if minutes <= 0 {
		minutes = s.defaultDismissMinutes()
	}
	writeResult(w, s.tracker.DismissNotification(req.Hostname, time.Duration(minutes)*time.Minute))
}

func (s *Server) defaultDismissMinutes() int {
	settings, err := s.store.GetSettings()
	if err != nil || settings.DismissMinutes <= 0 {
		return constants.DefaultDismissMinutes
	}
	return settings.DismissMinutes
}

func (s *Server) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	var req HostnamePayload
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, s.tracker.DeleteSite(req.Hostname))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.GetAllCategories()
	if err != nil {
		writeJSON(w, http.StatusOK, response{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success    bool              `json:"success"`
		Categories []models.Category `json:"categories"`
	}{Success: true, Categories: categories})
}
