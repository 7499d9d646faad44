package bridge

import (
	"context"
	"fmt"

	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live"
	"github.com/voxcal/voxcal-core/core/tools"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// dispatcher executes backend-requested tool calls against the registered
// tool set and produces correlated responses. Each dispatch is independent:
// a failure is converted to a structured failure response and never touches
// session state.
type dispatcher struct {
	tools map[string]tools.Tool
	emit  eventEmitter
}

func newDispatcher(emit eventEmitter, registered ...tools.Tool) *dispatcher {
	if emit == nil {
		emit = noopEventEmitter
	}

	d := &dispatcher{tools: map[string]tools.Tool{}, emit: emit}
	for _, tool := range registered {
		d.tools[tool.Declaration.Name] = tool
	}
	return d
}

// declarations returns the registered tool schemas for stream setup.
func (d *dispatcher) declarations() []tools.Declaration {
	declarations := make([]tools.Declaration, 0, len(d.tools))
	for _, tool := range d.tools {
		declarations = append(declarations, tool.Declaration)
	}
	return declarations
}

// Dispatch looks the tool up by name, invokes it, and returns a response
// echoing the originating call id. Unknown tools and handler failures
// produce a failure response rather than an error; the remote backend is
// the party that needs to hear about them.
func (d *dispatcher) Dispatch(ctx context.Context, call live.FunctionCall) live.FunctionResponse {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.ID),
	)

	tool, ok := d.tools[call.Name]
	if !ok {
		err := fmt.Errorf("tool not found: %s", call.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.emit(events.NewToolCallFailed(call.ID, call.Name, err.Error()))
		return failureResponse(call, err)
	}

	d.emit(events.NewToolCallStarted(call.ID, call.Name))

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		err = fmt.Errorf("failed to execute tool %q: %w", call.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.emit(events.NewToolCallFailed(call.ID, call.Name, err.Error()))
		return failureResponse(call, err)
	}

	d.emit(events.NewToolCallCompleted(call.ID, call.Name))
	return live.FunctionResponse{ID: call.ID, Name: call.Name, Response: result}
}

func failureResponse(call live.FunctionCall, err error) live.FunctionResponse {
	return live.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"success": false,
			"error":   err.Error(),
		},
	}
}
