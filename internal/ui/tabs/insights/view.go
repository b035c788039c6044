package insights

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkarren/chesstime/internal/models"
	"github.com/mkarren/chesstime/internal/ui/components"
	"github.com/mkarren/chesstime/internal/ui/styles"
)

// View renders the insights tab.
func (m *Model) View() string {
	stats := m.state.Stats()
	if !stats.HasData() {
		empty := styles.HelpStyle.Render("No games loaded yet. Fetch some from the Calendar tab.")
		return styles.CenterBoth(empty, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTotalsCard(stats))
	sections = append(sections, m.renderHighlightsCard(stats))
	sections = append(sections, m.renderSpeedCard(stats))
	sections = append(sections, m.renderWinRateCard(stats))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Insights")
	owner := m.state.Owner()
	subtitle := styles.HelpStyle.Render("Playtime statistics for " + owner)
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTotalsCard(stats *models.AggregateStats) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Totals"))

	rows = append(rows, fmt.Sprintf("Time played:  %s",
		styles.FocusedStyle.Render(formatPlaytime(stats.TotalMs))))
	rows = append(rows, fmt.Sprintf("Games:        %s",
		styles.FocusedStyle.Render(fmt.Sprintf("%d", stats.TotalGames))))

	if boundary, ok := m.state.Boundary(); ok {
		from := time.UnixMilli(boundary.EarliestTimestamp).Format("Jan 2, 2006")
		to := time.UnixMilli(boundary.MostRecentTimestamp).Format("Jan 2, 2006")
		rows = append(rows, fmt.Sprintf("Covering:     %s to %s", from, to))
	}

	return m.card(rows)
}

func (m *Model) renderHighlightsCard(stats *models.AggregateStats) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Highlights"))

	if hour, rate := stats.BestHour(4); hour >= 0 {
		rows = append(rows, fmt.Sprintf("Best hour:    %s  %s",
			styles.FocusedStyle.Render(formatHour(hour)),
			styles.HelpStyle.Render(fmt.Sprintf("(%.0f%% wins)", rate*100))))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Best hour:    not enough games yet"))
	}

	rows = append(rows, fmt.Sprintf("Favors:       %s",
		styles.FocusedStyle.Render(stats.MostActiveSpeed().String())))

	if view := m.services.CalendarView(); !view.Empty && view.DaysWithData > 0 {
		rows = append(rows, fmt.Sprintf("Goal:         met on %d of %d active days (%.0f%%)",
			view.DaysGoalMet, view.DaysWithData, view.GoalProgress()*100))
	}

	if stats.BingeCount > 0 {
		rows = append(rows, styles.WarningTextStyle.Render(
			fmt.Sprintf("Binges:       %d sessions of 5+ games within 2 hours", stats.BingeCount)))
	}

	return m.card(rows)
}

func (m *Model) renderSpeedCard(stats *models.AggregateStats) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Time by Speed"))

	values := make([]float64, 0, len(models.Speeds))
	labels := make([]string, 0, len(models.Speeds))
	for _, speed := range models.Speeds {
		values = append(values, stats.SpeedDistribution[speed])
		labels = append(labels, speed.String())
	}

	rows = append(rows, components.RenderBarChart(values, labels, m.chartWidth()))
	return m.card(rows)
}

func (m *Model) renderWinRateCard(stats *models.AggregateStats) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Win Rate by Hour"))

	data := make([]float64, 24)
	for hour := range 24 {
		data[hour] = stats.HourlyWins[hour].Rate() * 100
	}

	rows = append(rows, components.RenderLineChart(data, m.chartWidth(), 8, "hour of day 0-23"))
	return m.card(rows)
}

func (m *Model) card(rows []string) string {
	cardWidth := max(m.width-6, 40)
	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) chartWidth() int {
	return max(m.width-20, 30)
}

// formatPlaytime renders total milliseconds as "12h 34m".
func formatPlaytime(ms int64) string {
	total := time.Duration(ms) * time.Millisecond
	hours := int(total.Hours())
	minutes := int(total.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatHour renders an hour of day as "3 PM".
func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
