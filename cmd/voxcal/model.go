//go:build cgo

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	bridge "github.com/voxcal/voxcal-core/core"
	"github.com/voxcal/voxcal-core/core/calendar"
	"github.com/voxcal/voxcal-core/core/events"
)

type bridgeEventMsg struct {
	event events.Event
}

type connectDoneMsg struct {
	err error
}

type eventsLoadedMsg struct {
	events []calendar.Event
	err    error
}

type model struct {
	controller *bridge.Controller
	store      *calendar.Client
	incoming   <-chan events.Event

	spinner    spinner.Model
	styles     styles
	width      int
	connecting bool

	calendarEvents []calendar.Event
	listErr        error
	quitting       bool
}

func newModel(controller *bridge.Controller, store *calendar.Client, incoming <-chan events.Event) model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return model{
		controller: controller,
		store:      store,
		incoming:   incoming,
		spinner:    s,
		styles:     newStyles(),
		width:      80,
		connecting: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect(), m.waitForEvent(), m.loadEvents())
}

func (m model) connect() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return connectDoneMsg{err: m.controller.Connect(ctx)}
	}
}

func (m model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.incoming
		if !ok {
			return nil
		}
		return bridgeEventMsg{event: event}
	}
}

func (m model) loadEvents() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		listed, err := m.store.ListEvents(ctx)
		return eventsLoadedMsg{events: listed, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.controller.Close()
			return m, tea.Quit
		case " ":
			if m.controller.IsRecording() {
				m.controller.StopRecording()
				return m, nil
			}
			controller := m.controller
			return m, func() tea.Msg {
				_ = controller.StartRecording(context.Background())
				return nil
			}
		case "r":
			return m, m.loadEvents()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectDoneMsg:
		m.connecting = false
		return m, nil

	case bridgeEventMsg:
		if _, ok := msg.event.(events.EventsRefreshed); ok {
			return m, tea.Batch(m.loadEvents(), m.waitForEvent())
		}
		return m, m.waitForEvent()

	case eventsLoadedMsg:
		m.calendarEvents = msg.events
		m.listErr = msg.err
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{
		m.styles.title.Render("voxcal"),
		m.statusLine(),
	}

	if message := m.controller.Err(); message != nil {
		lines = append(lines, m.styles.warning.Render(wordwrap.String(*message, m.width)))
	}

	lines = append(lines, m.styles.section.Render(m.renderCalendar()))
	lines = append(lines, m.styles.help.Render("space: talk  r: refresh  q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) statusLine() string {
	if m.connecting {
		return fmt.Sprintf("%s connecting...", m.spinner.View())
	}

	status := m.styles.offline.Render("● disconnected")
	if m.controller.IsConnected() {
		status = m.styles.online.Render("● connected")
	}

	if m.controller.IsRecording() {
		status += "  " + m.styles.recording.Render("◉ recording")
	}

	return status
}

func (m model) renderCalendar() string {
	if m.listErr != nil {
		return m.styles.warning.Render(wordwrap.String("Could not load events: "+m.listErr.Error(), m.width))
	}

	if len(m.calendarEvents) == 0 {
		return m.styles.empty.Render("No events scheduled yet. Talk to the assistant to add some!")
	}

	lines := make([]string, 0, len(m.calendarEvents))
	for _, event := range m.calendarEvents {
		line := fmt.Sprintf("%s  %s", m.styles.eventTime.Render(formatEventTime(event.StartTime)), m.styles.eventTitle.Render(event.Title))
		if event.Description != "" {
			line += "\n" + m.styles.detail.Render(wordwrap.String("   "+event.Description, m.width))
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatEventTime(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("Mon Jan 2 15:04")
}
