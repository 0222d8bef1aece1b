package cli

import "github.com/charmbracelet/lipgloss"

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	fadedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func styleName(name string) string {
	return nameStyle.Render(name)
}
