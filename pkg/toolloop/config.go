package toolloop

// LoopConfig configures the orchestration loop itself; per-call execution
// settings live in tools.ToolConfig.
type LoopConfig struct {
	// MaxIterations caps the number of model round-trips in a single request.
	// Hitting the cap with tool calls still pending fails the request.
	MaxIterations int
}

// DefaultLoopConfig returns the default loop configuration.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxIterations: 5,
	}
}

// WithMaxIterations sets the maximum number of tool calling iterations.
func (c LoopConfig) WithMaxIterations(maxIterations int) LoopConfig {
	c.MaxIterations = maxIterations
	return c
}
