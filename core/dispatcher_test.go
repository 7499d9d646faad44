package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live"
	"github.com/voxcal/voxcal-core/core/tools"
)

func echoTool(name string) tools.Tool {
	return tools.Tool{
		Declaration: tools.Declaration{Name: name},
		Execute: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"success": true, "echo": args}, nil
		},
	}
}

func failingTool(name string, err error) tools.Tool {
	return tools.Tool{
		Declaration: tools.Declaration{Name: name},
		Execute: func(context.Context, map[string]any) (map[string]any, error) {
			return nil, err
		},
	}
}

func TestDispatcherEchoesCallIDOnSuccess(t *testing.T) {
	d := newDispatcher(nil, echoTool("echo"))

	response := d.Dispatch(context.Background(), live.FunctionCall{
		ID:   "call-1",
		Name: "echo",
		Args: map[string]any{"value": "hello"},
	})

	if response.ID != "call-1" {
		t.Fatalf("expected response to echo call id %q, got %q", "call-1", response.ID)
	}
	if response.Name != "echo" {
		t.Fatalf("expected response name %q, got %q", "echo", response.Name)
	}
	if success, _ := response.Response["success"].(bool); !success {
		t.Fatalf("expected success response, got %v", response.Response)
	}
}

func TestDispatcherUnknownToolProducesFailureResponse(t *testing.T) {
	recorder := &eventRecorder{}
	d := newDispatcher(recorder.record, echoTool("echo"))

	response := d.Dispatch(context.Background(), live.FunctionCall{
		ID:   "call-2",
		Name: "delete_everything",
	})

	if response.ID != "call-2" {
		t.Fatalf("expected failure response to echo call id %q, got %q", "call-2", response.ID)
	}
	if success, ok := response.Response["success"].(bool); !ok || success {
		t.Fatalf("expected success=false in failure response, got %v", response.Response)
	}
	if message, _ := response.Response["error"].(string); message != "tool not found: delete_everything" {
		t.Fatalf("unexpected failure message %q", message)
	}

	assertKinds(t, recorder.kinds(), []events.Kind{events.KindToolCallFailed})
}

func TestDispatcherHandlerFailureProducesFailureResponse(t *testing.T) {
	recorder := &eventRecorder{}
	d := newDispatcher(recorder.record, failingTool("flaky", errors.New("store offline")))

	response := d.Dispatch(context.Background(), live.FunctionCall{ID: "call-3", Name: "flaky"})

	if success, ok := response.Response["success"].(bool); !ok || success {
		t.Fatalf("expected success=false in failure response, got %v", response.Response)
	}
	if message, _ := response.Response["error"].(string); message == "" {
		t.Fatalf("expected an error message in the failure response")
	}

	assertKinds(t, recorder.kinds(), []events.Kind{
		events.KindToolCallStarted,
		events.KindToolCallFailed,
	})
}

func TestDispatcherFailureIsIsolatedFromOtherCalls(t *testing.T) {
	d := newDispatcher(nil, echoTool("echo"), failingTool("flaky", errors.New("store offline")))

	failure := d.Dispatch(context.Background(), live.FunctionCall{ID: "call-4", Name: "flaky"})
	success := d.Dispatch(context.Background(), live.FunctionCall{ID: "call-5", Name: "echo"})

	if ok, _ := failure.Response["success"].(bool); ok {
		t.Fatalf("expected first dispatch to fail")
	}
	if ok, _ := success.Response["success"].(bool); !ok {
		t.Fatalf("expected second dispatch to succeed despite the earlier failure")
	}
}

func TestDispatcherDeclarationsCoverRegisteredTools(t *testing.T) {
	d := newDispatcher(nil, echoTool("echo"), echoTool("other"))

	declarations := d.declarations()
	if len(declarations) != 2 {
		t.Fatalf("expected two declarations, got %d", len(declarations))
	}

	names := map[string]bool{}
	for _, declaration := range declarations {
		names[declaration.Name] = true
	}
	if !names["echo"] || !names["other"] {
		t.Fatalf("expected declarations for both registered tools, got %v", names)
	}
}
