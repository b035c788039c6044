// Package insights provides the aggregate statistics tab for the chesstime TUI.
package insights

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkarren/chesstime/internal/app"
	"github.com/mkarren/chesstime/internal/services"
)

// keyMap defines the key bindings specific to the insights tab.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the insights tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// New creates a new insights model.
func New(state *app.State, mgr *services.Manager) *Model {
	return &Model{
		state:    state,
		services: mgr,
		keys:     defaultKeyMap(),
	}
}

// Init initializes the insights tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the insights tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sets the available size for the insights tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.Up, m.keys.Down}}
}
