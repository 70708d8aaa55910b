package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsure_KeepsIncomingHeader(t *testing.T) {
	ctx, id := Ensure(context.Background(), "abc")
	assert.Equal(t, "abc", id)
	assert.Equal(t, "abc", FromContext(ctx))
}

func TestEnsure_GeneratesWhenMissing(t *testing.T) {
	ctx, id := Ensure(context.Background(), "")
	assert.Len(t, id, 32)
	assert.Equal(t, id, FromContext(ctx))
}

func TestFromContext_Empty(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
}
