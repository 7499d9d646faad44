package events

const (
	// KindEventsRefreshed identifies a calendar change notification.
	KindEventsRefreshed Kind = "calendar.events_refreshed"
)

// EventsRefreshed signals that the calendar store changed and displayed
// event lists should be re-fetched. It is a one-way notification; it carries
// no payload.
type EventsRefreshed struct {
	Base
}

// NewEventsRefreshed creates an events refreshed notification.
func NewEventsRefreshed() EventsRefreshed {
	return EventsRefreshed{Base: NewBase(KindEventsRefreshed)}
}
