// Package console renders evaluation summaries for terminal output.
package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/okian/agenteval/internal/adapters/export"
	"github.com/okian/agenteval/internal/domain/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// RenderOverall formats the overall accuracy line.
func RenderOverall(pct float64) string {
	return fmt.Sprintf("Overall Accuracy: %.2f%%", pct)
}

// RenderSummary renders the agent summary table with two-decimal floats.
func RenderSummary(summaries []model.AgentSummary) string {
	t := export.SummaryTableWith(summaries, export.TwoDecimals)
	return render(t, func(col int) bool { return col > 0 })
}

// RenderDetail renders the per-record table with two-decimal scores and
// coloured feedback.
func RenderDetail(records []model.EvaluationRecord) string {
	t := export.DetailTableWith(records, export.TwoDecimals)
	feedbackCol := len(t.Columns) - 1
	for i, row := range t.Rows {
		if records[i].Pass {
			row[feedbackCol] = passStyle.Render(row[feedbackCol])
		} else {
			row[feedbackCol] = failStyle.Render(row[feedbackCol])
		}
	}
	return render(t, func(col int) bool { return col == 0 || col == 5 })
}

func render(t export.Table, numeric func(col int) bool) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Columns...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numeric(col):
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}
