//go:build cgo

package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	online     lipgloss.Style
	offline    lipgloss.Style
	recording  lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	eventTime  lipgloss.Style
	eventTitle lipgloss.Style
	detail     lipgloss.Style
	help       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		online:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		offline:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		recording:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		eventTime:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		eventTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		help:       lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
