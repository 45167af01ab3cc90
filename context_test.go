package tasktree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextNameUnmanagedPlaceholder(t *testing.T) {
	assert.Equal(t, "[unmanaged]", ContextName(context.Background()))
	assert.Equal(t, "[unmanaged]", ContextLocalName(context.Background()))
}

func TestContextNameRoundTrip(t *testing.T) {
	ctx := withName(context.Background(), "worker", "/app/worker")
	assert.Equal(t, "/app/worker", ContextName(ctx))
	assert.Equal(t, "worker", ContextLocalName(ctx))
}

func TestContextDoesNotLeakHandle(t *testing.T) {
	// The context attachment carries only name strings; there is no API
	// to retrieve a SubsystemHandle (or anything else) back out of a
	// context.Context produced by this package.
	ctx := withName(context.Background(), "worker", "/app/worker")
	v := ctx.Value(ctxKey{})
	_, ok := v.(ctxAttachment)
	assert.True(t, ok)
}
