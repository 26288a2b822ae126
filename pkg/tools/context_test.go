package tools

import (
	"context"
	"testing"
)

func TestWithRegistry_RoundTrip(t *testing.T) {
	reg := NewInMemoryToolRegistry()
	ctx := WithRegistry(context.Background(), reg)

	got, ok := RegistryFrom(ctx)
	if !ok {
		t.Fatal("expected registry on context")
	}
	if got != ToolRegistry(reg) {
		t.Fatal("expected the same registry instance back")
	}
}

func TestRegistryFrom_AbsentAndNil(t *testing.T) {
	if _, ok := RegistryFrom(context.Background()); ok {
		t.Fatal("expected no registry on a fresh context")
	}

	// Attaching a nil registry is a no-op.
	ctx := WithRegistry(context.Background(), nil)
	if _, ok := RegistryFrom(ctx); ok {
		t.Fatal("expected nil registry not to be attached")
	}
}
