package turns

// BlockKind identifies the variant of a Block within a Turn.
type BlockKind string

const (
	BlockKindUser     BlockKind = "user"
	BlockKindLLMText  BlockKind = "llm_text"
	BlockKindToolCall BlockKind = "tool_call"
	BlockKindToolUse  BlockKind = "tool_use"
	BlockKindSystem   BlockKind = "system"
)

// Well-known payload keys shared by all block constructors.
const (
	PayloadKeyText   = "text"
	PayloadKeyID     = "id"
	PayloadKeyName   = "name"
	PayloadKeyArgs   = "args"
	PayloadKeyResult = "result"
	PayloadKeyError  = "error"
)

// Role string constants used for human roles in blocks.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Block represents a single atomic unit within a Turn.
type Block struct {
	ID      string         `yaml:"id,omitempty" json:"id,omitempty"`
	Kind    BlockKind      `yaml:"kind" json:"kind"`
	Role    string         `yaml:"role,omitempty" json:"role,omitempty"`
	Payload map[string]any `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// Turn contains an ordered, append-only list of Blocks and associated metadata.
// Block order is semantically meaningful: it is the causal context order sent to
// the model on every request. Existing blocks are never mutated or removed.
type Turn struct {
	ID       string         `yaml:"id,omitempty" json:"id,omitempty"`
	Blocks   []Block        `yaml:"blocks" json:"blocks"`
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Clone returns a deep copy of the Turn suitable for mutation without affecting
// the original. Block payload maps are copied; values inside remain shared.
func (t *Turn) Clone() *Turn {
	if t == nil {
		return nil
	}
	out := &Turn{ID: t.ID}
	if len(t.Metadata) > 0 {
		out.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			out.Metadata[k] = v
		}
	}
	if len(t.Blocks) == 0 {
		return out
	}
	out.Blocks = make([]Block, len(t.Blocks))
	for i := range t.Blocks {
		b := t.Blocks[i]
		if b.Payload != nil {
			cp := make(map[string]any, len(b.Payload))
			for k, v := range b.Payload {
				cp[k] = v
			}
			b.Payload = cp
		}
		out.Blocks[i] = b
	}
	return out
}

// AppendBlock appends a Block to a Turn.
func AppendBlock(t *Turn, b Block) {
	t.Blocks = append(t.Blocks, b)
}

// AppendBlocks appends multiple Blocks in order.
func AppendBlocks(t *Turn, blocks ...Block) {
	for _, b := range blocks {
		AppendBlock(t, b)
	}
}

// FindBlocksByKind returns blocks of the requested kinds in turn order.
func FindBlocksByKind(t *Turn, kinds ...BlockKind) []Block {
	if t == nil {
		return nil
	}
	lookup := map[BlockKind]bool{}
	for _, k := range kinds {
		lookup[k] = true
	}
	ret := make([]Block, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		if lookup[b.Kind] {
			ret = append(ret, b)
		}
	}
	return ret
}
