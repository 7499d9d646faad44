//go:build cgo

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	bridge "github.com/voxcal/voxcal-core/core"
	"github.com/voxcal/voxcal-core/core/audio/miniaudio"
	"github.com/voxcal/voxcal-core/core/calendar"
	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live/gemini"
)

func main() {
	storeURL := flag.String("store", "http://localhost:3001", "calendar store base URL")
	flag.Parse()

	if err := run(*storeURL); err != nil {
		fmt.Fprintln(os.Stderr, "voxcal:", err)
		os.Exit(1)
	}
}

func run(storeURL string) error {
	liveClient, err := gemini.NewClient()
	if err != nil {
		return err
	}

	devices, err := miniaudio.NewClient()
	if err != nil {
		return err
	}
	defer devices.Close()

	store := calendar.NewClient(storeURL)

	incoming := make(chan events.Event, 64)
	controller := bridge.NewController(
		bridge.WithLiveClient(liveClient),
		bridge.WithAudioInput(devices.Capture()),
		bridge.WithAudioOutput(devices.Playback()),
		bridge.WithCalendarStore(store),
		bridge.WithEventCallback(func(event events.Event) {
			select {
			case incoming <- event:
			default:
			}
		}),
	)
	defer controller.Close()

	program := tea.NewProgram(newModel(controller, store, incoming))
	_, err = program.Run()
	return err
}
