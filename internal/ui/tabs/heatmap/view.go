package heatmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkarren/chesstime/internal/models"
	"github.com/mkarren/chesstime/internal/ui/components"
	"github.com/mkarren/chesstime/internal/ui/styles"
)

// View renders the calendar tab.
func (m *Model) View() string {
	m.refreshView()

	if m.showDetail {
		return m.renderDetail()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderUsernameRow())
	sections = append(sections, "")
	sections = append(sections, components.RenderCalendarGrid(m.view, m.selected))
	sections = append(sections, "")
	sections = append(sections, components.RenderHeatLegend())
	sections = append(sections, "")
	sections = append(sections, m.renderSelectedDay())
	sections = append(sections, m.renderGoalRow())
	sections = append(sections, m.renderFilterRow())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Playtime Calendar")
	subtitle := styles.HelpStyle.Render("Daily chess activity on lichess.org")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderUsernameRow() string {
	label := styles.HelpStyle.Render("Username: ")
	if m.editingUser {
		return label + m.usernameInput.View()
	}
	user := m.username()
	if user == "" {
		return label + styles.WarningTextStyle.Render("not set (press u)")
	}
	return label + styles.FocusedStyle.Render(user)
}

func (m *Model) renderSelectedDay() string {
	if m.selected < 0 || m.selected >= len(m.view.Cells) {
		return ""
	}
	cell := m.view.Cells[m.selected]

	parts := []string{
		styles.FocusedStyle.Render(cell.Date.Format("Mon, Jan 2 2006")),
		fmt.Sprintf("%.0f min", cell.Minutes),
		fmt.Sprintf("%d games", cell.Games),
	}
	if cell.GoalMet {
		parts = append(parts, styles.SuccessTextStyle.Render("goal met"))
	}
	return strings.Join(parts, styles.HelpStyle.Render("  │  "))
}

func (m *Model) renderGoalRow() string {
	if m.goal.Value <= 0 {
		return styles.HelpStyle.Render("Goal: off  (+ to set, g to switch unit)")
	}

	progress := m.view.GoalProgress()
	return fmt.Sprintf("%s %d %s/day   %s",
		styles.HelpStyle.Render("Goal:"),
		m.goal.Value,
		m.goal.Unit,
		styles.HelpStyle.Render(fmt.Sprintf("met on %d of %d active days (%.0f%%)",
			m.view.DaysGoalMet, m.view.DaysWithData, progress*100)))
}

func (m *Model) renderFilterRow() string {
	var parts []string
	for _, speed := range models.Speeds {
		label := fmt.Sprintf("%s %s", filterKeyLabel(speed), speed)
		if m.filters.Enabled(speed) {
			parts = append(parts, styles.SuccessTextStyle.Render(label))
		} else {
			parts = append(parts, styles.HelpStyle.Render(label+" (off)"))
		}
	}
	return styles.HelpStyle.Render("Speeds: ") + strings.Join(parts, "   ")
}

func filterKeyLabel(speed models.Speed) string {
	switch speed {
	case models.SpeedBullet:
		return "[B]"
	case models.SpeedBlitz:
		return "[Z]"
	case models.SpeedRapid:
		return "[R]"
	case models.SpeedClassical:
		return "[C]"
	default:
		return "[?]"
	}
}

// renderDetail renders the expanded game list for the selected day.
func (m *Model) renderDetail() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(m.detailDate.Format("Monday, January 2 2006")))
	b.WriteString("\n\n")

	if len(m.detailGames) == 0 {
		b.WriteString(styles.HelpStyle.Render("No games recorded."))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("  %-10s %-24s %-24s %-8s %-9s %s",
			"Result", "White", "Black", "TC", "Speed", "Duration")
		b.WriteString(styles.TableHeaderStyle.Render(header))
		b.WriteString("\n")

		for _, dg := range m.detailGames {
			outcomeStyle := styles.HelpStyle
			switch dg.Outcome {
			case models.OutcomeWin:
				outcomeStyle = styles.SuccessTextStyle
			case models.OutcomeLoss:
				outcomeStyle = styles.ErrorTextStyle
			}

			row := fmt.Sprintf("  %-10s %-24s %-24s %-8s %-9s %s",
				dg.Outcome,
				playerLabel(dg.White, dg.WhiteRating),
				playerLabel(dg.Black, dg.BlackRating),
				dg.TimeControl,
				dg.Game.Speed,
				dg.Game.Duration().Round(time.Second))
			b.WriteString(outcomeStyle.Render(row))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("esc to close"))

	panel := styles.ModalContentStyle.Render(b.String())
	return styles.CenterBoth(panel, m.width, m.height)
}

func playerLabel(name string, rating int) string {
	if rating > 0 {
		return fmt.Sprintf("%s (%d)", name, rating)
	}
	return name
}
