package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-triest/pkg/experiment"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(graph string, edges int, truth int64, summaries []*experiment.Summary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			string(s.Variant),
			fmt.Sprintf("%d", s.ReservoirSize),
			fmt.Sprintf("%d", s.Trials),
			fmt.Sprintf("%.1f", s.Mean),
			fmt.Sprintf("%.1f", s.StdDev),
			fmt.Sprintf("%+.2f%%", 100*s.Bias),
			fmt.Sprintf("%.2f%%", 100*s.MeanRelativeError),
			fmt.Sprintf("%.0f–%.0f", s.P05, s.P95),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))).
		Headers("variant", "M", "trials", "mean", "stddev", "bias", "mre", "p5–p95").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	title := titleStyle.Render(fmt.Sprintf("%s: %d edges, %d triangles", graph, edges, truth))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}
