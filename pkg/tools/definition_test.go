package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

type weatherInput struct {
	Location string `json:"location" jsonschema:"required,description=City and country"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
}

type weatherOutput struct {
	Temperature string `json:"temperature"`
	Location    string `json:"location"`
}

func TestNewToolFromFunc_ReflectsSchema(t *testing.T) {
	def, err := NewToolFromFunc("getWeather", "Gets the current weather", func(in weatherInput) (weatherOutput, error) {
		return weatherOutput{Temperature: "23° F", Location: in.Location}, nil
	})
	if err != nil {
		t.Fatalf("NewToolFromFunc: %v", err)
	}

	if def.Parameters == nil {
		t.Fatal("expected a reflected parameter schema")
	}
	if def.Parameters.Type != "object" {
		t.Fatalf("expected object schema, got %q", def.Parameters.Type)
	}
	if _, ok := def.Parameters.Properties.Get("location"); !ok {
		t.Fatal("expected location property in schema")
	}
	found := false
	for _, req := range def.Parameters.Required {
		if req == "location" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected location to be required, got %v", def.Parameters.Required)
	}
}

func TestNewToolFromFunc_ContextSignature(t *testing.T) {
	def, err := NewToolFromFunc("slow", "slow tool", func(ctx context.Context, in weatherInput) (weatherOutput, error) {
		select {
		case <-ctx.Done():
			return weatherOutput{}, ctx.Err()
		default:
			return weatherOutput{Location: in.Location}, nil
		}
	})
	if err != nil {
		t.Fatalf("NewToolFromFunc: %v", err)
	}

	out, err := def.Function.ExecuteWithContext(context.Background(), []byte(`{"location":"Tokyo, JP"}`))
	if err != nil {
		t.Fatalf("ExecuteWithContext: %v", err)
	}
	if out.(weatherOutput).Location != "Tokyo, JP" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestNewToolFromFunc_RejectsBadSignatures(t *testing.T) {
	cases := []struct {
		name string
		fn   interface{}
	}{
		{"not a function", 42},
		{"no error return", func(in weatherInput) weatherOutput { return weatherOutput{} }},
		{"no input struct", func(ctx context.Context) (weatherOutput, error) { return weatherOutput{}, nil }},
		{"non-struct input", func(s string) (weatherOutput, error) { return weatherOutput{}, nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewToolFromFunc("bad", "bad tool", tc.fn); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestExecuteWithContext_BadArguments(t *testing.T) {
	def, err := NewToolFromFunc("echo", "echo tool", func(in weatherInput) (weatherOutput, error) {
		return weatherOutput{Location: in.Location}, nil
	})
	if err != nil {
		t.Fatalf("NewToolFromFunc: %v", err)
	}

	if _, err := def.Function.ExecuteWithContext(context.Background(), []byte(`{not json`)); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestExecuteWithContext_PropagatesToolError(t *testing.T) {
	def, err := NewToolFromFunc("failing", "always fails", func(in weatherInput) (weatherOutput, error) {
		return weatherOutput{}, fmt.Errorf("service unavailable")
	})
	if err != nil {
		t.Fatalf("NewToolFromFunc: %v", err)
	}

	_, err = def.Function.ExecuteWithContext(context.Background(), []byte(`{"location":"x"}`))
	if err == nil || err.Error() != "service unavailable" {
		t.Fatalf("expected tool error, got %v", err)
	}
}

func TestToolCall_ArgumentsAreRawJSON(t *testing.T) {
	tc := ToolCall{ID: "c1", Name: "getWeather", Arguments: json.RawMessage(`{"location":"Berlin, DE"}`)}
	b, err := json.Marshal(tc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ToolCall
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(back.Arguments) != `{"location":"Berlin, DE"}` {
		t.Fatalf("arguments not preserved: %s", back.Arguments)
	}
}
