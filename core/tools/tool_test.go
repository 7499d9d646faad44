package tools

import (
	"context"
	"testing"
)

type schedulingParameters struct {
	Title       string `json:"title" jsonschema_description:"The title of the event"`
	StartTime   string `json:"start_time" jsonschema_description:"The start time in ISO format"`
	EndTime     string `json:"end_time,omitempty" jsonschema_description:"The end time in ISO format (optional)"`
	Description string `json:"description,omitempty"`
}

func TestNewToolReflectsDeclarationFromParameters(t *testing.T) {
	tool := NewTool("add_calendar_event", "Add an event", func(context.Context, schedulingParameters) (map[string]any, error) {
		return nil, nil
	})

	declaration := tool.Declaration
	if declaration.Name != "add_calendar_event" {
		t.Fatalf("expected declaration name to carry over, got %q", declaration.Name)
	}

	for _, field := range []string{"title", "start_time", "end_time", "description"} {
		if _, ok := declaration.Parameters[field]; !ok {
			t.Fatalf("expected declaration to include parameter %q", field)
		}
	}
	if got := declaration.Parameters["title"].Type; got != "string" {
		t.Fatalf("expected title parameter type string, got %q", got)
	}
	if got := declaration.Parameters["start_time"].Description; got != "The start time in ISO format" {
		t.Fatalf("unexpected start_time description: %q", got)
	}

	if len(declaration.Required) != 2 {
		t.Fatalf("expected two required fields, got %v", declaration.Required)
	}
	for _, field := range declaration.Required {
		if field != "title" && field != "start_time" {
			t.Fatalf("unexpected required field %q", field)
		}
	}
}

func TestExecuteDecodesTypedParameters(t *testing.T) {
	var received schedulingParameters
	tool := NewTool("add_calendar_event", "Add an event", func(_ context.Context, parameters schedulingParameters) (map[string]any, error) {
		received = parameters
		return map[string]any{"success": true}, nil
	})

	result, err := tool.Execute(context.Background(), map[string]any{
		"title":      "Standup",
		"start_time": "2024-01-01T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("expected execution to succeed, got %v", err)
	}
	if result["success"] != true {
		t.Fatalf("expected handler result to pass through, got %v", result)
	}
	if received.Title != "Standup" || received.StartTime != "2024-01-01T09:00:00Z" {
		t.Fatalf("expected decoded parameters, got %+v", received)
	}
}

func TestExecuteRejectsMissingRequiredArguments(t *testing.T) {
	handlerCalls := 0
	tool := NewTool("add_calendar_event", "Add an event", func(context.Context, schedulingParameters) (map[string]any, error) {
		handlerCalls++
		return nil, nil
	})

	if _, err := tool.Execute(context.Background(), map[string]any{"title": "Standup"}); err == nil {
		t.Fatalf("expected missing start_time to fail execution")
	}
	if _, err := tool.Execute(context.Background(), nil); err == nil {
		t.Fatalf("expected nil arguments to fail execution")
	}
	if handlerCalls != 0 {
		t.Fatalf("expected handler to stay uncalled on invalid arguments, got %d calls", handlerCalls)
	}
}

func TestExecuteAllowsEmptyParameterStructs(t *testing.T) {
	tool := NewTool("list_calendar_events", "List events", func(context.Context, struct{}) (map[string]any, error) {
		return map[string]any{"success": true}, nil
	})

	if len(tool.Declaration.Required) != 0 {
		t.Fatalf("expected no required fields, got %v", tool.Declaration.Required)
	}
	if _, err := tool.Execute(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("expected empty arguments to execute, got %v", err)
	}
}
