package bridge

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/voxcal/voxcal-core/core/calendar"
	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/tools"
)

type addEventParameters struct {
	Title       string `json:"title" jsonschema_description:"The title of the event"`
	StartTime   string `json:"start_time" jsonschema_description:"The start time in ISO format"`
	EndTime     string `json:"end_time,omitempty" jsonschema_description:"The end time in ISO format (optional)"`
	Description string `json:"description,omitempty" jsonschema_description:"A brief description (optional)"`
}

// calendarTools builds the fixed tool set the backend may invoke. A
// successful add_calendar_event additionally emits an EventsRefreshed
// notification so the surrounding UI re-fetches its event list; the
// notification is one-way and not part of the tool response.
func calendarTools(store CalendarStore, emit eventEmitter) []tools.Tool {
	if emit == nil {
		emit = noopEventEmitter
	}

	return []tools.Tool{
		tools.NewTool("add_calendar_event", "Add an event to the user's calendar",
			func(ctx context.Context, parameters addEventParameters) (map[string]any, error) {
				var params calendar.CreateEventParams
				if err := copier.Copy(&params, &parameters); err != nil {
					return nil, fmt.Errorf("failed to map event parameters: %w", err)
				}

				if _, err := store.CreateEvent(ctx, params); err != nil {
					return nil, fmt.Errorf("failed to schedule event: %w", err)
				}

				emit(events.NewEventsRefreshed())
				return map[string]any{
					"success": true,
					"message": "Event scheduled successfully",
				}, nil
			}),
		tools.NewTool("list_calendar_events", "List all events currently on the user's calendar",
			func(ctx context.Context, _ struct{}) (map[string]any, error) {
				calendarEvents, err := store.ListEvents(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch events: %w", err)
				}

				return map[string]any{
					"success": true,
					"events":  calendarEvents,
				}, nil
			}),
	}
}
