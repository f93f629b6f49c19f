package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"crewforge/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true)
)

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("crewforge") + dimStyle.Render("  crew: "+a.crewName))
	b.WriteString("\n\n")

	for _, row := range a.rows {
		b.WriteString(a.renderRow(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if a.ready {
		b.WriteString(a.output.View())
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Width(a.width).Render(a.footer()))
	return b.String()
}

// renderRow draws one checklist line with a status marker.
func (a *App) renderRow(row taskRow) string {
	var marker, name string
	switch row.status {
	case models.TaskStatusDone:
		marker = doneStyle.Render("✓")
		name = row.name
	case models.TaskStatusFailed:
		marker = failStyle.Render("✗")
		name = failStyle.Render(row.name)
	case models.TaskStatusInProgress:
		marker = a.spinner.View()
		name = row.name
	default:
		marker = dimStyle.Render("○")
		name = dimStyle.Render(row.name)
	}

	line := fmt.Sprintf(" %s %s", marker, name)
	if row.agent != "" {
		line += dimStyle.Render("  " + row.agent)
	}
	if row.duration > 0 {
		line += dimStyle.Render("  " + row.duration.Round(time.Second).String())
	}
	return line
}

// footer summarizes run totals.
func (a *App) footer() string {
	elapsed := time.Since(a.start).Round(time.Second)
	status := "running"
	if a.done {
		status = "done"
		if a.err != nil {
			status = "failed"
		}
	}
	return fmt.Sprintf(" %s | tokens %d in / %d out | $%.4f | %s | q to quit",
		status, a.tokensIn, a.tokensOut, a.cost, elapsed)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
