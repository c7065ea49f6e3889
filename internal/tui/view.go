package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var banner string
	if m.loadErr != nil {
		banner = errorStyle.Render(fmt.Sprintf("failed to read storage: %v", m.loadErr))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("sitebudget"),
		banner,
		docStyle.Render(m.table.View()),
		m.help.View(m),
	)
}
