package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mkarren/chesstime/internal/services"
	"github.com/mkarren/chesstime/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabCalendar is the ID for the calendar heatmap tab.
	TabCalendar TabID = iota
	// TabInsights is the ID for the insights tab.
	TabInsights
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabCalendar:
		return "Calendar"
	case TabInsights:
		return "Insights"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "calendar")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "insights")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "info")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the main application model.
type Model struct {
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	state    *State
	services *services.Manager
	keymap   KeyMap

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabCalendar,
		tabNames:  []string{"Calendar", "Insights", "Info"},
		tabs:      make([]Tab, 3),
		state:     NewState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()

	case tea.KeyMsg:
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())

	case FetchStartedMsg:
		m.state.SetFetching(true)

	case FetchFinishedMsg:
		m.state.SetFetching(false)
		if msg.Error != nil {
			cmds = append(cmds, NotifyErrorCmd(fmt.Sprintf("%s failed: %v", msg.Kind, msg.Error)))
		} else {
			cmds = append(cmds, NotifySuccessCmd(fmt.Sprintf("%s complete for %s", msg.Kind, msg.User)))
		}

	case ExportFinishedMsg:
		if msg.Error != nil {
			cmds = append(cmds, NotifyErrorCmd(fmt.Sprintf("export failed: %v", msg.Error)))
		} else {
			cmds = append(cmds, NotifySuccessCmd("Exported to "+msg.Path))
		}

	case ImportFinishedMsg:
		if msg.Error != nil {
			cmds = append(cmds, NotifyErrorCmd(fmt.Sprintf("import failed: %v", msg.Error)))
		}

	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))

	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event)...)
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}

	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}

	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)

	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()

	case ErrorMsg:
		cmds = append(cmds, NotifyErrorCmd(msg.Error.Error()))

	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) []tea.Cmd {
	var cmds []tea.Cmd

	switch e := event.(type) {
	case services.GamesUpdatedEvent:
		m.state.SetGames(e.Owner, e.Stats, e.Boundary)

	case services.FetchProgressEvent:
		m.state.SetFetchProgress(fmt.Sprintf("Fetched %d games (%s)",
			e.Count, e.LastCreatedAt.Format("Jan 2, 2006")))

	case services.SnapshotImportedEvent:
		cmds = append(cmds, NotifySuccessCmd(
			fmt.Sprintf("Imported %d games for %s", e.TotalGames, e.Owner)))

	case services.ErrorEvent:
		cmds = append(cmds, NotifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error)))
	}

	return cmds
}

// handleKeyMsg handles global keyboard input; tab-specific keys fall
// through to the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil

	case key.Matches(msg, m.keymap.Tab1):
		m.activeTab = TabCalendar
		m.updateTabSizes()

	case key.Matches(msg, m.keymap.Tab2):
		m.activeTab = TabInsights
		m.updateTabSizes()

	case key.Matches(msg, m.keymap.Tab3):
		m.activeTab = TabInfo
		m.updateTabSizes()

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.activeTab = TabID((int(m.activeTab) + 1) % len(m.tabs))
			m.updateTabSizes()
		}

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.activeTab = TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))
			m.updateTabSizes()
		}
	}

	return nil
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	// Global digit/tab keys never reach tabs; everything else does.
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keymap.Tab1) || key.Matches(keyMsg, m.keymap.Tab2) ||
			key.Matches(keyMsg, m.keymap.Tab3) || key.Matches(keyMsg, m.keymap.Quit) ||
			key.Matches(keyMsg, m.keymap.Help) {
			return nil
		}
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-4)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(fmt.Sprintf("%s Loading...", m.spinner.View()))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if toasts := m.renderNotifications(); toasts != "" {
		mainView = m.overlayTopRight(mainView, toasts)
	}

	return mainView
}

func (m *Model) renderNavbar() string {
	var tabs []string
	for i, name := range m.tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if TabID(i) == m.activeTab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return ansi.Truncate(row, m.width, "")
}

func (m *Model) renderStatusBar() string {
	var parts []string

	if owner := m.state.Owner(); owner != "" {
		parts = append(parts, styles.FocusedStyle.Render(owner))
	}
	if stats := m.state.Stats(); stats.HasData() {
		parts = append(parts, fmt.Sprintf("%d games", stats.TotalGames))
	}
	if m.state.IsFetching() {
		progress := m.state.FetchProgress()
		if progress == "" {
			progress = "Fetching..."
		}
		parts = append(parts, m.spinner.View()+" "+progress)
	}
	parts = append(parts, styles.HelpStyle.Render("? help"))

	bar := strings.Join(parts, styles.HelpStyle.Render("  │  "))
	return ansi.Truncate(" "+bar, m.width, "…")
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	writeBinding := func(binding key.Binding) {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			styles.HelpKeyStyle.Render(fmt.Sprintf("%-12s", binding.Help().Key)),
			styles.HelpDescStyle.Render(binding.Help().Desc)))
	}

	for _, binding := range []key.Binding{
		m.keymap.Tab1, m.keymap.Tab2, m.keymap.Tab3,
		m.keymap.NextTab, m.keymap.PrevTab,
	} {
		writeBinding(binding)
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString("\n")
		b.WriteString(styles.SubTitleStyle.Render(m.activeTab.String()))
		b.WriteString("\n")
		for _, binding := range m.tabs[m.activeTab].ShortHelp() {
			writeBinding(binding)
		}
	}

	b.WriteString("\n")
	writeBinding(m.keymap.Help)
	writeBinding(m.keymap.Quit)

	return styles.HelpPanelStyle.Render(b.String())
}

func (m *Model) renderNotifications() string {
	notifications := m.state.Notifications()
	if len(notifications) == 0 {
		return ""
	}

	var rendered []string
	for _, n := range notifications {
		style := styles.InfoTextStyle
		switch n.Type {
		case NotificationSuccess:
			style = styles.SuccessTextStyle
		case NotificationError:
			style = styles.ErrorTextStyle
		case NotificationWarning:
			style = styles.WarningTextStyle
		}
		rendered = append(rendered, styles.ToastStyle.Render(style.Render(n.Message)))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// overlayCentered paints overlay in the middle of mainView.
func (m *Model) overlayCentered(mainView, overlay string) string {
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := lipgloss.Width(overlay)

	y := max(0, (m.height-len(overlayLines))/2)
	x := max(0, (m.width-overlayWidth)/2)

	return m.overlayAt(mainView, overlayLines, x, y, overlayWidth)
}

// overlayTopRight paints overlay below the navbar at the right edge.
func (m *Model) overlayTopRight(mainView, overlay string) string {
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := lipgloss.Width(overlay)
	x := max(0, m.width-overlayWidth-1)

	return m.overlayAt(mainView, overlayLines, x, 1, overlayWidth)
}

func (m *Model) overlayAt(mainView string, overlayLines []string, x, y, overlayWidth int) string {
	mainLines := strings.Split(mainView, "\n")

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}
		mainLine := mainLines[mainY]
		if lipgloss.Width(mainLine) < x {
			mainLine += strings.Repeat(" ", x-lipgloss.Width(mainLine))
		}
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")
		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}
