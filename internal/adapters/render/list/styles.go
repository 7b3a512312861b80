package list

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	id     lipgloss.Style
	cell   lipgloss.Style
	label  lipgloss.Style
	footer lipgloss.Style
	empty  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true),
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		id:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		cell:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		footer: lipgloss.NewStyle().Faint(true).MarginTop(1),
		empty:  lipgloss.NewStyle().Faint(true),
	}
}
