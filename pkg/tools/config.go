package tools

import "time"

// ToolConfig specifies how tool calls are executed during one model turn.
type ToolConfig struct {
	ExecutionTimeout time.Duration `json:"execution_timeout"`
	MaxParallelTools int           `json:"max_parallel_tools"`
}

// DefaultToolConfig returns a sensible default configuration.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		ExecutionTimeout: 30 * time.Second,
		MaxParallelTools: 3,
	}
}

func (tc ToolConfig) WithExecutionTimeout(timeout time.Duration) ToolConfig {
	tc.ExecutionTimeout = timeout
	return tc
}

func (tc ToolConfig) WithMaxParallelTools(maxParallel int) ToolConfig {
	tc.MaxParallelTools = maxParallel
	return tc
}
