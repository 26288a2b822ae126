package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gemchat/gemchat/pkg/events"
)

// ToolExecutor handles the execution of tool calls requested by the model.
//
// Failures never escape the executor boundary as Go errors: an unknown tool
// name, an executor fault, or a timeout all come back as a failure-shaped
// ToolResult so the orchestration loop can feed them to the model.
type ToolExecutor interface {
	ExecuteToolCall(ctx context.Context, toolCall ToolCall, registry ToolRegistry) *ToolResult
	// ExecuteToolCalls executes a batch; the returned slice always matches the
	// request order regardless of execution interleaving.
	ExecuteToolCalls(ctx context.Context, toolCalls []ToolCall, registry ToolRegistry) []*ToolResult
}

// DefaultToolExecutor is the default implementation of ToolExecutor.
type DefaultToolExecutor struct {
	config ToolConfig
}

func NewDefaultToolExecutor(config ToolConfig) *DefaultToolExecutor {
	return &DefaultToolExecutor{config: config}
}

// ExecuteToolCall executes a single tool call.
func (e *DefaultToolExecutor) ExecuteToolCall(ctx context.Context, toolCall ToolCall, registry ToolRegistry) *ToolResult {
	start := time.Now()

	events.PublishEventToContext(ctx, events.NewToolCallExecuteEvent(
		eventMetadata(ctx),
		events.ToolCall{ID: toolCall.ID, Name: toolCall.Name, Input: compactArgs(toolCall.Arguments)},
	))

	result := e.execute(ctx, toolCall, registry)
	result.ID = toolCall.ID
	result.Name = toolCall.Name
	result.Duration = time.Since(start)

	events.PublishEventToContext(ctx, events.NewToolCallExecutionResultEvent(
		eventMetadata(ctx),
		events.ToolResult{ID: toolCall.ID, Name: toolCall.Name, Result: stringifyResult(result.Result), Error: result.Error},
	))

	return result
}

// eventMetadata starts from the request's base metadata on ctx (session and
// turn IDs) and mints a fresh event ID, so executor events correlate with the
// engine and session events of the same request.
func eventMetadata(ctx context.Context) events.EventMetadata {
	metadata := events.EventMetadataFromContext(ctx)
	metadata.ID = uuid.New()
	return metadata
}

func (e *DefaultToolExecutor) execute(ctx context.Context, toolCall ToolCall, registry ToolRegistry) (result *ToolResult) {
	// An executor panic must surface as data, not take down the session.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", toolCall.Name).Interface("panic", r).Msg("tool executor panicked")
			result = &ToolResult{Error: fmt.Sprintf("tool panicked: %v", r)}
		}
	}()

	toolDef, err := registry.GetTool(toolCall.Name)
	if err != nil {
		return &ToolResult{Error: fmt.Sprintf("tool not found: %s", toolCall.Name)}
	}

	execCtx := ctx
	if e.config.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.config.ExecutionTimeout)
		defer cancel()
	}

	out, err := toolDef.Function.ExecuteWithContext(execCtx, toolCall.Arguments)
	if err != nil {
		return &ToolResult{Result: out, Error: err.Error()}
	}
	return &ToolResult{Result: out}
}

// ExecuteToolCalls executes multiple tool calls, bounded-parallel when the
// config allows it. Results are written by request index so ordering is
// positional no matter how execution interleaves.
func (e *DefaultToolExecutor) ExecuteToolCalls(ctx context.Context, toolCalls []ToolCall, registry ToolRegistry) []*ToolResult {
	if len(toolCalls) == 0 {
		return nil
	}

	results := make([]*ToolResult, len(toolCalls))

	maxParallel := e.config.MaxParallelTools
	if maxParallel <= 1 || len(toolCalls) == 1 {
		for i, toolCall := range toolCalls {
			results[i] = e.ExecuteToolCall(ctx, toolCall, registry)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, toolCall := range toolCalls {
		g.Go(func() error {
			results[i] = e.ExecuteToolCall(gctx, toolCall, registry)
			return nil
		})
	}
	// workers never return errors; failures are captured in the results
	_ = g.Wait()

	return results
}

func compactArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var tmp interface{}
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(tmp)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func stringifyResult(v interface{}) string {
	if v == nil {
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

var _ ToolExecutor = (*DefaultToolExecutor)(nil)
