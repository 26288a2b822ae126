package toolblocks

import (
	"encoding/json"

	"github.com/gemchat/gemchat/pkg/turns"
)

// ToolCall represents a pending tool invocation described by a Turn block.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult represents the outcome of executing a tool call.
type ToolResult struct {
	ID      string
	Name    string
	Content string
	Error   string
}

// ExtractPendingToolCalls finds tool_call blocks that don't yet have a
// matching tool_use block. Order follows block order, which is the order the
// model requested the calls in.
func ExtractPendingToolCalls(t *turns.Turn) []ToolCall {
	if t == nil {
		return nil
	}
	used := make(map[string]bool)
	for _, b := range t.Blocks {
		if b.Kind == turns.BlockKindToolUse {
			if id, ok := b.Payload[turns.PayloadKeyID].(string); ok && id != "" {
				used[id] = true
			}
		}
	}
	var calls []ToolCall
	for _, b := range t.Blocks {
		if b.Kind != turns.BlockKindToolCall {
			continue
		}
		id, _ := b.Payload[turns.PayloadKeyID].(string)
		if id == "" || used[id] {
			continue
		}
		name, _ := b.Payload[turns.PayloadKeyName].(string)
		var args map[string]any
		if raw := b.Payload[turns.PayloadKeyArgs]; raw != nil {
			switch v := raw.(type) {
			case map[string]any:
				args = v
			case string:
				_ = json.Unmarshal([]byte(v), &args)
			case json.RawMessage:
				_ = json.Unmarshal(v, &args)
			default:
				if bts, err := json.Marshal(v); err == nil {
					_ = json.Unmarshal(bts, &args)
				}
			}
		}
		if args == nil {
			args = map[string]any{}
		}
		calls = append(calls, ToolCall{ID: id, Name: name, Arguments: args})
	}
	return calls
}

// AppendToolResultsBlocks appends tool_use blocks to the Turn from the
// provided results. Failed executions are recorded as a failure-shaped
// payload so the model sees them as ordinary tool output.
func AppendToolResultsBlocks(t *turns.Turn, results []ToolResult) {
	for _, r := range results {
		content := r.Content
		if r.Error != "" {
			content = FailurePayload(r.Error)
		}
		turns.AppendBlock(t, turns.NewToolUseBlock(r.ID, r.Name, content))
	}
}

// FailurePayload renders an execution failure as the JSON object handed back
// to the model in place of a result.
func FailurePayload(errText string) string {
	b, err := json.Marshal(map[string]any{
		"status": "failure",
		"error":  errText,
	})
	if err != nil {
		return `{"status":"failure","error":"unknown error"}`
	}
	return string(b)
}
