package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkarren/chesstime/internal/ui/styles"
	"github.com/mkarren/chesstime/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderKeysCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("API Endpoint", m.config.APIBaseURL))
		rows = append(rows, m.renderConfigRow("Preferences", m.config.PrefsPath))
		rows = append(rows, m.renderConfigRow("Log File", m.config.LogPath))
		if m.config.WatchSnapshot != "" {
			rows = append(rows, m.renderConfigRow("Watching", m.config.WatchSnapshot))
		}
		rows = append(rows, m.renderConfigRow("Fetch Limit", fmt.Sprintf("%d games", m.config.MaxGames)))
		rows = append(rows, m.renderConfigRow("HTTP Timeout", m.config.HTTPTimeout.String()))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return m.card(rows)
}

func (m *Model) renderKeysCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Calendar Keys"))
	rows = append(rows, "")

	for _, entry := range [][2]string{
		{"u", "set the tracked lichess username"},
		{"f / s / o", "fetch fresh, sync newer, backfill older games"},
		{"e", "export the cached games to a snapshot file"},
		{"arrows / hjkl", "move the day selection"},
		{"enter", "expand the selected day's game list"},
		{"g, + , -", "adjust the daily goal"},
		{"B Z R C", "toggle bullet, blitz, rapid, classical"},
	} {
		rows = append(rows, m.renderConfigRow(entry[0], entry[1]))
	}

	return m.card(rows)
}

func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About chesstime"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.Info()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	if owner := m.state.Owner(); owner != "" {
		rows = append(rows, fmt.Sprintf("Tracking: %s", styles.InfoTextStyle.Render(owner)))
	}

	return m.card(rows)
}

func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) card(rows []string) string {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
