package tools

import "context"

// registryCtxKey is an unexported key type to avoid collisions in context values.
type registryCtxKey struct{}

// WithRegistry attaches a ToolRegistry to the context for downstream engines
// and executors. The registry rides the context rather than the conversation
// state so history stays pure data.
func WithRegistry(ctx context.Context, reg ToolRegistry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if reg == nil {
		// "no tools" means not setting the key at all
		return ctx
	}
	return context.WithValue(ctx, registryCtxKey{}, reg)
}

// RegistryFrom extracts the ToolRegistry from context.
func RegistryFrom(ctx context.Context) (ToolRegistry, bool) {
	if ctx == nil {
		return nil, false
	}
	reg, ok := ctx.Value(registryCtxKey{}).(ToolRegistry)
	if !ok || reg == nil {
		return nil, false
	}
	return reg, true
}
