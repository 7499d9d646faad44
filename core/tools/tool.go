// Package tools defines the registry contract for backend-invocable tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// ParameterBase describes one declared tool parameter.
type ParameterBase struct {
	Type        string
	Description string
}

// Declaration is the schema advertised to the backend at session setup so
// the model knows what it may invoke.
type Declaration struct {
	Name        string
	Description string
	Parameters  map[string]ParameterBase
	Required    []string
}

// Tool pairs a declaration with its local handler. Arguments arrive as
// untyped structured data; Execute validates and runs them.
type Tool struct {
	Declaration Declaration
	Execute     func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// NewTool builds a tool whose parameter schema is reflected from T and whose
// handler receives decoded, typed parameters.
//
// Required fields are derived from T's json tags: fields without omitempty
// are required. Missing required fields or undecodable arguments produce an
// error instead of reaching the handler.
func NewTool[T any](name, description string, handler func(ctx context.Context, parameters T) (map[string]any, error)) Tool {
	declaration := reflectDeclaration[T](name, description)

	return Tool{
		Declaration: declaration,
		Execute: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if args == nil {
				args = map[string]any{}
			}

			for _, field := range declaration.Required {
				if _, ok := args[field]; !ok {
					return nil, fmt.Errorf("missing required argument %q", field)
				}
			}

			raw, err := json.Marshal(args)
			if err != nil {
				return nil, fmt.Errorf("failed to encode arguments: %w", err)
			}

			var parameters T
			if err := json.Unmarshal(raw, &parameters); err != nil {
				return nil, fmt.Errorf("failed to decode arguments: %w", err)
			}

			return handler(ctx, parameters)
		},
	}
}

func reflectDeclaration[T any](name, description string) Declaration {
	reflector := jsonschema.Reflector{DoNotReference: true}

	var parameters T
	var schema *jsonschema.Schema
	if reflect.TypeOf(parameters) != nil && reflect.TypeOf(parameters).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(parameters).Elem())
	} else {
		schema = reflector.Reflect(parameters)
	}

	declaration := Declaration{
		Name:        name,
		Description: description,
		Parameters:  map[string]ParameterBase{},
		Required:    schema.Required,
	}

	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			declaration.Parameters[pair.Key] = ParameterBase{
				Type:        pair.Value.Type,
				Description: pair.Value.Description,
			}
		}
	}

	return declaration
}
