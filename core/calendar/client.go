// Package calendar provides the HTTP client for the calendar store
// collaborator.
//
// The store owns event persistence; this package only moves events over its
// fixed four-operation API (list, create, delete, mark notified).
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// Event is one calendar entry as the store serves it. Events are opaque to
// the session bridge; only the tool handlers construct and read them.
type Event struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	Description string `json:"description,omitempty"`
	Notified    int    `json:"notified,omitempty"`
}

// CreateEventParams is the payload for event creation. Title and StartTime
// are mandatory; the store rejects requests without them.
type CreateEventParams struct {
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	Description string `json:"description,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a calendar store client for the given base URL, e.g.
// "http://localhost:3000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// ListEvents fetches all events. The store returns them ordered by start
// time ascending.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	ctx, span := tracer.Start(ctx, "list calendar events")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/events", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode event list: %w", err)
	}

	span.SetAttributes(attribute.Int("calendar.event_count", len(events)))
	return events, nil
}

// CreateEvent schedules a new event and returns the store-assigned id.
func (c *Client) CreateEvent(ctx context.Context, params CreateEventParams) (int64, error) {
	ctx, span := tracer.Start(ctx, "create calendar event")
	defer span.End()

	payload, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/events", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("failed to decode created event: %w", err)
	}

	span.SetAttributes(attribute.Int64("calendar.event_id", created.ID))
	return created.ID, nil
}

// DeleteEvent removes an event by id.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "delete calendar event")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/events/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// MarkNotified flags an event as already notified so reminder sweeps skip
// it.
func (c *Client) MarkNotified(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "mark calendar event notified")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/api/events/"+strconv.FormatInt(id, 10)+"/notified", nil)
	if err != nil {
		return fmt.Errorf("failed to build notified request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar store request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calendar store returned status %d", resp.StatusCode)
	}

	return body, nil
}
