package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// ToolDefinition represents a tool that can be called by the model.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
	Function    ToolFunc           `json:"-"`
}

// ToolFunc wraps the actual Go function with a pre-compiled executor.
type ToolFunc struct {
	fn        interface{}
	executor  func(context.Context, []byte) (interface{}, error)
	inputType reflect.Type
}

// ToolCall represents a request to execute a tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult represents the result of a tool execution. A non-empty Error
// field is the failure shape; it is a normal value, never a propagated fault.
type ToolResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Result   interface{}   `json:"result"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errType = reflect.TypeOf((*error)(nil)).Elem()

// NewToolFromFunc creates a ToolDefinition from a Go function. Supported
// signatures:
//
//	func(Input) (Result, error)
//	func(context.Context, Input) (Result, error)
//
// The parameter schema is reflected from the Input struct via invopop/jsonschema,
// so field tags (json, jsonschema) drive the declaration sent to the model.
func NewToolFromFunc(name, description string, fn interface{}) (*ToolDefinition, error) {
	funcType := reflect.TypeOf(fn)
	if funcType == nil || funcType.Kind() != reflect.Func {
		return nil, fmt.Errorf("provided value is not a function")
	}
	if funcType.NumOut() != 2 || !funcType.Out(1).Implements(errType) {
		return nil, fmt.Errorf("function must return (result, error)")
	}

	inputType, err := funcInputType(funcType)
	if err != nil {
		return nil, err
	}

	schema, err := schemaForInput(inputType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &ToolDefinition{
		Name:        name,
		Description: description,
		Parameters:  schema,
		Function: ToolFunc{
			fn:        fn,
			executor:  makeExecutor(fn, funcType, inputType),
			inputType: inputType,
		},
	}, nil
}

// ExecuteWithContext unmarshals args into the input struct and invokes the
// wrapped function, passing ctx when the signature accepts it.
func (tf *ToolFunc) ExecuteWithContext(ctx context.Context, args []byte) (interface{}, error) {
	if tf.executor == nil {
		return nil, fmt.Errorf("tool function not properly initialized")
	}
	return tf.executor(ctx, args)
}

// IsValid reports whether the wrapper carries a callable function.
func (tf *ToolFunc) IsValid() bool {
	return tf.executor != nil
}

func funcInputType(funcType reflect.Type) (reflect.Type, error) {
	switch funcType.NumIn() {
	case 1:
		if funcType.In(0) == ctxType {
			return nil, fmt.Errorf("function must take an input struct")
		}
		return funcType.In(0), nil
	case 2:
		if funcType.In(0) != ctxType {
			return nil, fmt.Errorf("two-arg tool function must be (context.Context, Input)")
		}
		return funcType.In(1), nil
	default:
		return nil, fmt.Errorf("function must take (Input) or (context.Context, Input)")
	}
}

func schemaForInput(inputType reflect.Type) (*jsonschema.Schema, error) {
	if inputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool input must be a struct, got %s", inputType.Kind())
	}

	inputInstance := reflect.New(inputType).Elem().Interface()
	reflector := jsonschema.Reflector{
		// Expand definitions inline instead of using $refs
		DoNotReference: true,
	}
	schema := reflector.Reflect(inputInstance)
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema, nil
}

func makeExecutor(fn interface{}, funcType reflect.Type, inputType reflect.Type) func(context.Context, []byte) (interface{}, error) {
	funcValue := reflect.ValueOf(fn)
	wantsCtx := funcType.NumIn() == 2

	return func(ctx context.Context, args []byte) (interface{}, error) {
		input := reflect.New(inputType).Interface()
		if len(args) > 0 {
			if err := json.Unmarshal(args, input); err != nil {
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}

		in := []reflect.Value{reflect.ValueOf(input).Elem()}
		if wantsCtx {
			in = append([]reflect.Value{reflect.ValueOf(ctx)}, in...)
		}
		results := funcValue.Call(in)

		if errVal := results[1].Interface(); errVal != nil {
			return results[0].Interface(), errVal.(error)
		}
		return results[0].Interface(), nil
	}
}
