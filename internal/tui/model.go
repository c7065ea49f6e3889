package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tmeadows/sitebudget/internal/models"
	"github.com/tmeadows/sitebudget/internal/storage"
	"github.com/tmeadows/sitebudget/internal/utils"
)

type tickMsg time.Time

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type Model struct {
	store    storage.Provider
	table    table.Model
	keys     KeyMap
	help     help.Model
	loadErr  error
	quitting bool
	width    int
	height   int
}

func NewModel(store storage.Provider) Model {
	columns := []table.Column{
		{Title: "Site", Width: 28},
		{Title: "Category", Width: 14},
		{Title: "Status", Width: 10},
		{Title: "Spent", Width: 9},
		{Title: "Limit", Width: 9},
		{Title: "Remaining", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	m := Model{
		store: store,
		table: t,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Refresh, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Refresh, m.keys.Quit, m.keys.Help},
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if msg.Height > 8 {
			m.table.SetHeight(msg.Height - 6)
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh re-reads the store so a running engine's writes show up live.
func (m *Model) refresh() {
	sites, err := m.store.GetAllSites()
	if err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil

	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Hostname < sites[j].Hostname
	})

	rows := make([]table.Row, 0, len(sites))
	for _, site := range sites {
		rows = append(rows, m.siteRow(site))
	}
	m.table.SetRows(rows)
}

func (m *Model) siteRow(site models.Site) table.Row {
	spent := utils.FormatDurationMs(site.AccumulatedTimeMs)

	limit := "-"
	remaining := "-"
	if site.EffectiveLimitMs() > 0 {
		limit = utils.FormatDurationMs(site.EffectiveLimitMs())
		if rem := site.RemainingMs(); rem > 0 {
			remaining = utils.FormatDurationMs(rem)
		} else {
			remaining = "0m"
		}
	} else if site.Schedule != nil {
		limit = fmt.Sprintf("%s-%s", site.Schedule.StartTime, site.Schedule.StopTime)
	}

	return table.Row{site.Hostname, site.Category, siteStatus(site), spent, limit, remaining}
}

func siteStatus(site models.Site) string {
	switch {
	case !site.IsTracking:
		return "stopped"
	case site.IsPaused && site.DismissedUntil != nil:
		return "dismissed"
	case site.IsPaused:
		return "paused"
	default:
		return "tracking"
	}
}
