package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-triest/pkg/driver"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(12)

	estimateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)
)

func renderReport(r *driver.Report) string {
	rows := [][2]string{
		{"run", r.RunID},
		{"variant", string(r.Variant)},
		{"source", r.Source},
		{"reservoir", fmt.Sprintf("%d / %d edges", r.Stats.Sampled, r.Capacity)},
		{"edges", fmt.Sprintf("%d read, %d rejected", r.Edges, r.Rejected)},
		{"evictions", fmt.Sprintf("%d", r.Stats.Evicted)},
		{"vertices", fmt.Sprintf("%d sampled", r.Stats.Vertices)},
		{"duration", r.Duration.Round(time.Microsecond).String()},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("TRIÈST triangle estimate"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("triangles"))
	b.WriteString(estimateStyle.Render(fmt.Sprintf("%d", r.Estimate)))

	return boxStyle.Render(b.String())
}
