package engine

import (
	"context"

	"github.com/gemchat/gemchat/pkg/turns"
)

// Engine represents a hosted model backend that can process a conversation
// turn and return the model's response. Engines handle provider-specific
// request building, tool declaration, and response decoding.
type Engine interface {
	// RunInference sends the turn to the model and returns the same turn with
	// the model's response blocks appended. When a tool registry is attached
	// to ctx, the registered declarations are advertised with the request and
	// the response may contain tool_call blocks.
	// Events are published through all sinks registered on ctx.
	RunInference(ctx context.Context, t *turns.Turn) (*turns.Turn, error)
}
