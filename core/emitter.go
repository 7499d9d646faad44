package bridge

import "github.com/voxcal/voxcal-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}
