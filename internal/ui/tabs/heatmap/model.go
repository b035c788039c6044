// Package heatmap provides the calendar heatmap tab for the chesstime TUI.
package heatmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkarren/chesstime/internal/app"
	"github.com/mkarren/chesstime/internal/calendar"
	"github.com/mkarren/chesstime/internal/config"
	"github.com/mkarren/chesstime/internal/export"
	"github.com/mkarren/chesstime/internal/models"
	"github.com/mkarren/chesstime/internal/services"
)

// goalStep is the increment for goal adjustments in minutes mode.
const goalStep = 5

// keyMap defines the key bindings specific to the calendar tab.
type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Username key.Binding
	Fetch    key.Binding
	Sync     key.Binding
	Backfill key.Binding
	Export   key.Binding
	GoalUnit key.Binding
	GoalUp   key.Binding
	GoalDown key.Binding
	Filters  key.Binding
	Escape   key.Binding
}

// defaultKeyMap returns the default key bindings for the calendar tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev week"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next week"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "day details"),
		),
		Username: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "set username"),
		),
		Fetch: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fetch"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync"),
		),
		Backfill: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "backfill"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		GoalUnit: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "goal unit"),
		),
		GoalUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "goal up"),
		),
		GoalDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "goal down"),
		),
		Filters: key.NewBinding(
			key.WithKeys("B", "Z", "R", "C"),
			key.WithHelp("B/Z/R/C", "toggle speed"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the calendar heatmap tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	cfg      *config.Config
	keys     keyMap

	width  int
	height int

	view     calendar.View
	selected int

	goal    models.GoalSpec
	filters models.FilterSet

	usernameInput textinput.Model
	editingUser   bool

	showDetail  bool
	detailDate  time.Time
	detailGames []calendar.DayGame
}

// New creates a new calendar tab model, loading preferences from the
// manager's store.
func New(state *app.State, mgr *services.Manager, cfg *config.Config) *Model {
	input := textinput.New()
	input.Placeholder = "lichess username"
	input.CharLimit = 30
	input.Width = 24

	m := &Model{
		state:         state,
		services:      mgr,
		cfg:           cfg,
		keys:          defaultKeyMap(),
		selected:      -1,
		goal:          models.GoalSpec{Unit: models.GoalMinutes},
		filters:       models.AllSpeeds(),
		usernameInput: input,
	}

	if mgr != nil {
		if goal, err := mgr.Prefs().Goal(); err == nil {
			m.goal = goal
		}
		if filters, err := mgr.Prefs().Filters(); err == nil {
			m.filters = filters
		}
		if username, err := mgr.Prefs().Username(); err == nil {
			input.SetValue(username)
			m.usernameInput = input
		}
	}
	state.SetPrefs(m.goal, m.filters)

	return m
}

// Init initializes the calendar tab.
func (m *Model) Init() tea.Cmd {
	if user := m.username(); user != "" {
		return app.StartFetchCmd(m.services, app.FetchFull, user, m.cfg.MaxGames)
	}
	return textinput.Blink
}

// Update handles messages for the calendar tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.editingUser {
		return m.updateUsernameInput(msg)
	}
	if m.showDetail {
		return m.updateDetail(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	m.refreshView()

	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(7)

	case key.Matches(msg, m.keys.Open):
		m.openDetail()

	case key.Matches(msg, m.keys.Username):
		m.editingUser = true
		m.usernameInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Fetch):
		return m.startFetch(app.FetchFull)
	case key.Matches(msg, m.keys.Sync):
		return m.startFetch(app.FetchTopUp)
	case key.Matches(msg, m.keys.Backfill):
		return m.startFetch(app.FetchBackfill)

	case key.Matches(msg, m.keys.Export):
		owner := m.state.Owner()
		if owner == "" {
			return m, app.NotifyErrorCmd("Nothing to export yet")
		}
		return m, app.ExportCmd(m.services, export.Filename(owner, time.Now()))

	case key.Matches(msg, m.keys.GoalUnit):
		if m.goal.Unit == models.GoalMinutes {
			m.goal.Unit = models.GoalGames
		} else {
			m.goal.Unit = models.GoalMinutes
		}
		return m, m.persistGoal()

	case key.Matches(msg, m.keys.GoalUp):
		m.goal.Value += m.goalStep()
		return m, m.persistGoal()

	case key.Matches(msg, m.keys.GoalDown):
		m.goal.Value = max(0, m.goal.Value-m.goalStep())
		return m, m.persistGoal()

	case key.Matches(msg, m.keys.Filters):
		return m, m.toggleFilter(msg.String())
	}

	return m, nil
}

func (m *Model) updateUsernameInput(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.editingUser = false
			m.usernameInput.Blur()
			return m, nil

		case "enter":
			m.editingUser = false
			m.usernameInput.Blur()
			user := strings.TrimSpace(m.usernameInput.Value())
			if user == "" {
				return m, nil
			}
			if err := m.services.Prefs().SetUsername(user); err != nil {
				return m, app.NotifyErrorCmd(fmt.Sprintf("save username: %v", err))
			}
			return m, app.StartFetchCmd(m.services, app.FetchFull, user, m.cfg.MaxGames)
		}
	}

	var cmd tea.Cmd
	m.usernameInput, cmd = m.usernameInput.Update(msg)
	return m, cmd
}

func (m *Model) updateDetail(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "enter", "q":
			m.showDetail = false
			m.detailGames = nil
		}
	}
	return m, nil
}

func (m *Model) startFetch(kind app.FetchKind) (app.Tab, tea.Cmd) {
	user := m.username()
	if user == "" {
		return m, app.NotifyErrorCmd("Set a username first (u)")
	}
	if m.state.IsFetching() {
		return m, nil
	}
	return m, app.StartFetchCmd(m.services, kind, user, m.cfg.MaxGames)
}

// username prefers the input value, falling back to the cache owner.
func (m *Model) username() string {
	if user := strings.TrimSpace(m.usernameInput.Value()); user != "" {
		return user
	}
	return m.state.Owner()
}

func (m *Model) moveSelection(delta int) {
	if len(m.view.Cells) == 0 {
		return
	}
	if m.selected < 0 {
		m.selected = len(m.view.Cells) - 1
		return
	}
	next := m.selected + delta
	if next < 0 || next >= len(m.view.Cells) {
		return
	}
	m.selected = next
}

func (m *Model) openDetail() {
	if m.selected < 0 || m.selected >= len(m.view.Cells) {
		return
	}
	cell := m.view.Cells[m.selected]
	if !cell.HasGames() {
		return
	}
	m.detailDate = cell.Date
	m.detailGames = calendar.DayDetail(m.state.Stats(), cell.Day, m.state.Owner())
	m.showDetail = true
}

func (m *Model) persistGoal() tea.Cmd {
	m.state.SetPrefs(m.goal, m.filters)
	if err := m.services.Prefs().SetGoal(m.goal); err != nil {
		return app.NotifyErrorCmd(fmt.Sprintf("save goal: %v", err))
	}
	return nil
}

func (m *Model) goalStep() int {
	if m.goal.Unit == models.GoalGames {
		return 1
	}
	return goalStep
}

func (m *Model) toggleFilter(keyPressed string) tea.Cmd {
	var speed models.Speed
	switch keyPressed {
	case "B":
		speed = models.SpeedBullet
	case "Z":
		speed = models.SpeedBlitz
	case "R":
		speed = models.SpeedRapid
	case "C":
		speed = models.SpeedClassical
	default:
		return nil
	}

	m.filters.Toggle(speed)
	m.state.SetPrefs(m.goal, m.filters)
	if err := m.services.Prefs().SetFilter(speed, m.filters.Enabled(speed)); err != nil {
		return app.NotifyErrorCmd(fmt.Sprintf("save filter: %v", err))
	}
	return nil
}

// refreshView recomputes the calendar from current stats and preferences
// and keeps the selection within bounds.
func (m *Model) refreshView() {
	m.view = calendar.Build(m.state.Stats(), m.goal, m.filters, time.Local, time.Now())
	if m.selected >= len(m.view.Cells) {
		m.selected = len(m.view.Cells) - 1
	}
}

// SetSize sets the available size for the calendar tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editingUser {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "fetch")),
			m.keys.Escape,
		}
	}
	if m.showDetail {
		return []key.Binding{m.keys.Escape}
	}
	return []key.Binding{
		m.keys.Left, m.keys.Right, m.keys.Up, m.keys.Down,
		m.keys.Open, m.keys.Username, m.keys.Fetch, m.keys.Sync,
		m.keys.Backfill, m.keys.Export, m.keys.GoalUnit,
		m.keys.GoalUp, m.keys.GoalDown, m.keys.Filters,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Left, m.keys.Right, m.keys.Up, m.keys.Down, m.keys.Open},
		{m.keys.Username, m.keys.Fetch, m.keys.Sync, m.keys.Backfill, m.keys.Export},
		{m.keys.GoalUnit, m.keys.GoalUp, m.keys.GoalDown, m.keys.Filters},
	}
}
