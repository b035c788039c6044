package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkarren/chesstime/internal/calendar"
	"github.com/mkarren/chesstime/internal/ui/styles"
)

// gutterWidth is the space reserved for month labels left of the grid.
const gutterWidth = 9

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// RenderCalendarGrid paints a computed calendar view as one row per week,
// Sunday first, with month labels in the left gutter. selected, when >= 0,
// highlights that cell index.
func RenderCalendarGrid(view calendar.View, selected int) string {
	if view.Empty || len(view.Cells) == 0 {
		return styles.HelpStyle.Render("No activity data available for selected filters.")
	}

	var b strings.Builder

	b.WriteString(strings.Repeat(" ", gutterWidth))
	for _, d := range weekdayHeader {
		b.WriteString(styles.HelpStyle.Render(d))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for week := 0; week < len(view.Cells); week += 7 {
		end := min(week+7, len(view.Cells))
		cells := view.Cells[week:end]

		b.WriteString(renderGutter(cells))
		for i, cell := range cells {
			b.WriteString(renderCell(cell, week+i == selected))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderGutter labels a week row with "Jan 06" when a month starts in it.
func renderGutter(cells []calendar.DayCell) string {
	for _, cell := range cells {
		if cell.MonthStart {
			label := cell.Date.Format("Jan 06")
			return styles.HelpStyle.Render(fmt.Sprintf("%-*s", gutterWidth, label))
		}
	}
	return strings.Repeat(" ", gutterWidth)
}

func renderCell(cell calendar.DayCell, selected bool) string {
	var body string
	var style lipgloss.Style

	switch {
	case cell.OutOfRange:
		body = "··"
		style = lipgloss.NewStyle().Foreground(styles.Subtle)
	case cell.GoalMet:
		body = "██"
		style = styles.GetHeatStyle(cell.Tier, true)
	case cell.Tier > 0:
		body = "██"
		style = styles.GetHeatStyle(cell.Tier, false)
	default:
		body = "░░"
		style = styles.GetHeatStyle(0, false)
	}

	if selected {
		style = style.Reverse(true)
	}
	return style.Render(body)
}

// RenderHeatLegend explains the intensity ramp under the grid.
func RenderHeatLegend() string {
	parts := []string{styles.HelpStyle.Render("Less ")}
	for tier := 1; tier <= 4; tier++ {
		parts = append(parts, styles.GetHeatStyle(tier, false).Render("██"))
	}
	parts = append(parts,
		styles.HelpStyle.Render(" More   "),
		styles.GetHeatStyle(0, true).Render("██"),
		styles.HelpStyle.Render(" Goal met"),
	)
	return strings.Join(parts, "")
}
