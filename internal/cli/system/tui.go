package system

import (
	"fmt"
	"os"

	"github.com/tmeadows/sitebudget/internal/cli"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tmeadows/sitebudget/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
