package system

import (
	"fmt"

	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/notify"
)

// NotifyCmd sends a test notification through the tray app. Hidden;
// mostly useful for verifying the tray wiring.
type NotifyCmd struct {
	Text string `help:"Notification text to send." default:"sitebudget test notification"`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		fmt.Println("Notifications are disabled in settings.")
		return nil
	}

	if err := notify.New().Notify(c.Text); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	fmt.Println("Notification sent.")
	return nil
}
