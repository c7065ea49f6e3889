package system

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tmeadows/sitebudget/internal/alarms"
	"github.com/tmeadows/sitebudget/internal/bridge"
	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/keyring"
	"github.com/tmeadows/sitebudget/internal/logger"
	"github.com/tmeadows/sitebudget/internal/notify"
	"github.com/tmeadows/sitebudget/internal/tracker"
)

type ServeCmd struct {
	NoNotify bool `help:"Disable desktop notifications for this run regardless of settings."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	secret, err := bridgeSecret()
	if err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	outbox := bridge.NewOutbox()
	dispatch := tracker.MultiDispatcher{outbox}
	if settings.NotificationsEnabled && !c.NoNotify {
		dispatch = append(dispatch, notify.NewDispatcher(notify.New()))
	}

	// The scheduler needs the tracker's alarm handler, and the tracker
	// needs the scheduler. Nothing can fire before the tracker arms an
	// alarm, so the late bind is safe.
	var tr *tracker.Tracker
	sched := alarms.New(func(key string) {
		tr.HandleAlarm(key)
	})
	tr = tracker.New(ctx.Store, sched, dispatch)

	if err := tr.ArmStoredAlarms(); err != nil {
		sched.Stop()
		return fmt.Errorf("failed to arm stored alarms: %w", err)
	}

	srv := bridge.NewServer(tr, ctx.Store, outbox, secret, ctx.ConfigDir)
	port, err := srv.Start()
	if err != nil {
		sched.Stop()
		return err
	}
	fmt.Printf("sitebudget engine listening on 127.0.0.1:%d\n", port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := srv.Close(); err != nil {
		logger.Warn("bridge close failed", "error", err)
	}
	tr.Shutdown()
	sched.Stop()
	return nil
}

// bridgeSecret returns the shared secret the browser extension must
// present, generating and storing one on first run.
func bridgeSecret() (string, error) {
	secret, err := keyring.GetBridgeSecret()
	if err == nil && secret != "" {
		return secret, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("failed to read bridge secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate bridge secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if err := keyring.SetBridgeSecret(secret); err != nil {
		return "", fmt.Errorf("failed to store bridge secret: %w", err)
	}
	return secret, nil
}
