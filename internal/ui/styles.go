package ui

import "github.com/charmbracelet/lipgloss"

var (
	brandBlue  = lipgloss.Color("#1976d2")
	labelBG    = lipgloss.Color("#f0f4ff")
	mutedGrey  = lipgloss.Color("#8a8f98")
	warnYellow = lipgloss.Color("#FFC107")
	okGreen    = lipgloss.Color("#8BC34A")
	errRed     = lipgloss.Color("#e53935")
)

type styles struct {
	title    lipgloss.Style
	summary  lipgloss.Style
	card     lipgloss.Style
	label    lipgloss.Style
	question lipgloss.Style
	heading  lipgloss.Style
	control  lipgloss.Style
	disabled lipgloss.Style
	selected lipgloss.Style
	warning  lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	help     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(brandBlue),
		summary:  lipgloss.NewStyle().Bold(true),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(brandBlue).Padding(1, 2),
		label:    lipgloss.NewStyle().Foreground(brandBlue).Background(labelBG).Padding(0, 1),
		question: lipgloss.NewStyle().Bold(true),
		heading:  lipgloss.NewStyle().Bold(true).Underline(true),
		control:  lipgloss.NewStyle().Foreground(brandBlue),
		disabled: lipgloss.NewStyle().Foreground(mutedGrey),
		selected: lipgloss.NewStyle().Bold(true).Foreground(brandBlue),
		warning:  lipgloss.NewStyle().Foreground(warnYellow),
		success:  lipgloss.NewStyle().Foreground(okGreen),
		failure:  lipgloss.NewStyle().Foreground(errRed),
		help:     lipgloss.NewStyle().Foreground(mutedGrey),
	}
}
