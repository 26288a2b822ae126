package tools

import (
	"fmt"
	"sync"
)

// ToolRegistry manages the set of tools declared to the model. The registry is
// populated once at startup and read-only afterwards; it is the single source
// of truth for both the declarations sent with every model request and the
// dispatch table used by the executor.
type ToolRegistry interface {
	RegisterTool(name string, def ToolDefinition) error
	GetTool(name string) (*ToolDefinition, error)
	// ListTools returns the tools in registration order.
	ListTools() []ToolDefinition
	Count() int
}

// InMemoryToolRegistry is a thread-safe in-memory implementation of ToolRegistry.
type InMemoryToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]ToolDefinition
	order []string
}

func NewInMemoryToolRegistry() *InMemoryToolRegistry {
	return &InMemoryToolRegistry{
		tools: make(map[string]ToolDefinition),
	}
}

// RegisterTool registers a new tool. Registering an empty name, a duplicate
// name, or a definition without a callable function is a configuration-time
// defect and fails immediately. This is the startup-time exhaustiveness check:
// every declaration carries its executor, so a declared-but-unregistered tool
// cannot exist.
func (r *InMemoryToolRegistry) RegisterTool(name string, def ToolDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Name != "" && def.Name != name {
		return fmt.Errorf("tool definition name (%s) does not match registry name (%s)", def.Name, name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	if !def.Function.IsValid() {
		return fmt.Errorf("tool %s has no executable function", name)
	}

	def.Name = name
	r.tools[name] = def
	r.order = append(r.order, name)
	return nil
}

// GetTool retrieves a tool by name.
func (r *InMemoryToolRegistry) GetTool(name string) (*ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	// Return a copy to prevent external modifications
	toolCopy := tool
	return &toolCopy, nil
}

// ListTools returns all registered tools in registration order.
func (r *InMemoryToolRegistry) ListTools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Count returns the number of registered tools.
func (r *InMemoryToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

var _ ToolRegistry = (*InMemoryToolRegistry)(nil)
