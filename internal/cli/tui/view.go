package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var classOrder = []string{"setosa", "versicolor", "virginica"}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.health != nil {
		sections = append(sections, m.renderHealth())
	}

	if m.stats != nil {
		sections = append(sections, m.renderTraffic(), m.renderClasses())
	}

	if m.status != nil && (m.status.Process != nil || m.status.Host != nil) {
		sections = append(sections, m.renderResources())
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("IRISD DASHBOARD")

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh")

	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderHealth() string {
	style := okStyle
	if m.health.Status != "ok" {
		style = errorStyle
	}
	return fmt.Sprintf("  %s %s  %s",
		labelStyle.Render("Artifacts"),
		style.Render(strings.ToUpper(m.health.Status)),
		helpStyle.Render(m.health.Message),
	)
}

func (m Model) renderTraffic() string {
	s := m.stats
	return fmt.Sprintf("  %s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Requests"), valueStyle.Render(fmt.Sprintf("%d", s.Requests)),
		labelStyle.Render("4xx"), warnStyle.Render(fmt.Sprintf("%d", s.ClientErrors)),
		labelStyle.Render("5xx"), errorCountStyle(s.ServerErrors).Render(fmt.Sprintf("%d", s.ServerErrors)),
		labelStyle.Render("Avg"), valueStyle.Render(fmt.Sprintf("%.3f ms", s.AvgProcessingMS)),
	)
}

func (m Model) renderClasses() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Predictions by class"))

	for _, name := range classOrder {
		n := m.stats.Classes[name]
		share := 0.0
		if m.stats.Predictions > 0 {
			share = float64(n) / float64(m.stats.Predictions) * 100
		}
		bar := m.renderBar(fmt.Sprintf("%-10s", name), share, 30, colorPrimary)
		lines = append(lines, fmt.Sprintf("  %s %s", bar, valueStyle.Render(fmt.Sprintf("%d", n))))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderResources() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Resources"))

	if p := m.status.Process; p != nil {
		cpu := m.renderBar("CPU   ", p.CPUPercent, 20, getProgressColor(p.CPUPercent))
		rss := fmt.Sprintf("RSS %.1f MB", float64(p.RSSBytes)/1024/1024)
		lines = append(lines, fmt.Sprintf("  %s  %s", cpu, valueStyle.Render(rss)))
	}

	if h := m.status.Host; h != nil {
		mem := m.renderBar("Memory", h.MemoryUsagePercent, 20, getProgressColor(h.MemoryUsagePercent))
		info := fmt.Sprintf("of %.1f GB, load %.2f on %d CPUs", float64(h.MemoryTotalBytes)/1024/1024/1024, h.Load1, h.CPUs)
		lines = append(lines, fmt.Sprintf("  %s  %s", mem, valueStyle.Render(info)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderBar(label string, percent float64, width int, color lipgloss.Color) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s [%s%s] %5.1f%%", labelStyle.Render(label), filledBar, emptyBar, percent)
}

func (m Model) renderFooter() string {
	if m.status == nil {
		return ""
	}

	var parts []string
	if m.status.Version != "" {
		parts = append(parts, "Version: "+m.status.Version)
	}
	if p := m.status.Process; p != nil {
		parts = append(parts,
			fmt.Sprintf("PID: %d", p.PID),
			fmt.Sprintf("Threads: %d", p.Threads),
			fmt.Sprintf("Goroutines: %d", p.Goroutines),
		)
	}
	if m.stats != nil {
		parts = append(parts, fmt.Sprintf("Uptime: %ds", m.stats.UptimeSeconds))
	}
	parts = append(parts, "Updated: "+m.lastUpdated.Format("15:04:05"))

	return helpStyle.Render("  " + strings.Join(parts, " │ "))
}
