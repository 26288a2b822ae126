package turns

import "github.com/google/uuid"

// Convenience constructors for commonly used Block shapes.

// NewUserTextBlock returns a Block representing a user text message.
func NewUserTextBlock(text string) Block {
	return Block{
		ID:      uuid.NewString(),
		Kind:    BlockKindUser,
		Role:    RoleUser,
		Payload: map[string]any{PayloadKeyText: text},
	}
}

// NewAssistantTextBlock returns a Block representing assistant LLM text output.
func NewAssistantTextBlock(text string) Block {
	return Block{
		ID:      uuid.NewString(),
		Kind:    BlockKindLLMText,
		Role:    RoleAssistant,
		Payload: map[string]any{PayloadKeyText: text},
	}
}

// NewSystemTextBlock returns a Block representing a system directive.
func NewSystemTextBlock(text string) Block {
	return Block{
		ID:      uuid.NewString(),
		Kind:    BlockKindSystem,
		Role:    RoleSystem,
		Payload: map[string]any{PayloadKeyText: text},
	}
}

// NewToolCallBlock returns a Block requesting invocation of a tool.
// id correlates the eventual tool_use result block with this request.
func NewToolCallBlock(id string, name string, args any) Block {
	return Block{
		ID:   id,
		Kind: BlockKindToolCall,
		Payload: map[string]any{
			PayloadKeyID:   id,
			PayloadKeyName: name,
			PayloadKeyArgs: args,
		},
	}
}

// NewToolUseBlock returns a Block capturing the result of a tool execution.
// id must match the corresponding tool_call id.
func NewToolUseBlock(id string, name string, result any) Block {
	return Block{
		ID:   uuid.NewString(),
		Kind: BlockKindToolUse,
		Payload: map[string]any{
			PayloadKeyID:     id,
			PayloadKeyName:   name,
			PayloadKeyResult: result,
		},
	}
}

// BlockText extracts the text payload of a block, or "" if absent.
func BlockText(b Block) string {
	if b.Payload == nil {
		return ""
	}
	s, _ := b.Payload[PayloadKeyText].(string)
	return s
}

// LastAssistantText returns the text of the last llm_text block in the turn.
// It returns false when the turn contains no assistant text at all.
func LastAssistantText(t *Turn) (string, bool) {
	if t == nil {
		return "", false
	}
	for i := len(t.Blocks) - 1; i >= 0; i-- {
		if t.Blocks[i].Kind == BlockKindLLMText {
			return BlockText(t.Blocks[i]), true
		}
	}
	return "", false
}
