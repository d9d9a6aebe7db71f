package report

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/moolen/casa/internal/analysis"
	"golang.org/x/term"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#00D4FF") // Cyan
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Yellow/Orange
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type styles struct {
	title    lipgloss.Style
	section  lipgloss.Style
	muted    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	border   lipgloss.Style
	priority map[analysis.Priority]lipgloss.Style
	trend    map[analysis.Trend]lipgloss.Style
}

// newStyles returns the palette, or unstyled text when color is false.
func newStyles(color bool) styles {
	plain := lipgloss.NewStyle()
	s := styles{
		title:    plain,
		section:  plain,
		muted:    plain,
		header:   plain,
		cell:     plain.PaddingRight(1),
		border:   plain,
		priority: map[analysis.Priority]lipgloss.Style{},
		trend:    map[analysis.Trend]lipgloss.Style{},
	}
	if !color {
		return s
	}

	s.title = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	s.section = lipgloss.NewStyle().Bold(true)
	s.muted = lipgloss.NewStyle().Foreground(colorMuted)
	s.header = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).PaddingRight(1)
	s.border = lipgloss.NewStyle().Foreground(colorMuted)
	s.priority = map[analysis.Priority]lipgloss.Style{
		analysis.PriorityHigh:       lipgloss.NewStyle().Bold(true).Foreground(colorError),
		analysis.PriorityWatchList:  lipgloss.NewStyle().Foreground(colorWarning),
		analysis.PriorityClear:      lipgloss.NewStyle().Foreground(colorSuccess),
		analysis.PriorityUnreliable: lipgloss.NewStyle().Foreground(colorMuted),
		analysis.PriorityNoData:     lipgloss.NewStyle().Foreground(colorMuted),
	}
	s.trend = map[analysis.Trend]lipgloss.Style{
		analysis.TrendWorsening: lipgloss.NewStyle().Foreground(colorError),
		analysis.TrendImproving: lipgloss.NewStyle().Foreground(colorSuccess),
		analysis.TrendStable:    lipgloss.NewStyle().Foreground(colorMuted),
	}
	return s
}

func (s styles) renderPriority(p analysis.Priority) string {
	if st, ok := s.priority[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}

func (s styles) renderTrend(t analysis.Trend) string {
	if st, ok := s.trend[t]; ok {
		return st.Render(string(t))
	}
	return string(t)
}
