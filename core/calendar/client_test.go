package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListEventsDecodesStoreResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/events" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Event{
			{ID: 1, Title: "Standup", StartTime: "2024-01-01T09:00:00Z"},
			{ID: 2, Title: "Review", StartTime: "2024-01-01T14:00:00Z", EndTime: "2024-01-01T15:00:00Z"},
		})
	}))
	defer server.Close()

	events, err := NewClient(server.URL).ListEvents(context.Background())
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Title != "Standup" || events[1].EndTime != "2024-01-01T15:00:00Z" {
		t.Fatalf("unexpected events decoded: %+v", events)
	}
}

func TestCreateEventPostsPayloadAndReturnsAssignedID(t *testing.T) {
	var received CreateEventParams
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/events" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("expected json content type, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]int64{"id": 42})
	}))
	defer server.Close()

	id, err := NewClient(server.URL).CreateEvent(context.Background(), CreateEventParams{
		Title:     "Standup",
		StartTime: "2024-01-01T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if id != 42 {
		t.Fatalf("expected assigned id 42, got %d", id)
	}
	if received.Title != "Standup" || received.StartTime != "2024-01-01T09:00:00Z" {
		t.Fatalf("unexpected payload received by store: %+v", received)
	}
}

func TestClientSurfacesNonSuccessStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.ListEvents(context.Background()); err == nil {
		t.Fatalf("expected list against failing store to error")
	}
	if _, err := client.CreateEvent(context.Background(), CreateEventParams{Title: "x", StartTime: "y"}); err == nil {
		t.Fatalf("expected create against failing store to error")
	}
}

func TestDeleteAndMarkNotifiedHitPerEventRoutes(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.DeleteEvent(context.Background(), 7); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if err := client.MarkNotified(context.Background(), 7); err != nil {
		t.Fatalf("expected mark notified to succeed, got %v", err)
	}

	if len(paths) != 2 || paths[0] != "DELETE /api/events/7" || paths[1] != "PATCH /api/events/7/notified" {
		t.Fatalf("unexpected store requests: %v", paths)
	}
}
