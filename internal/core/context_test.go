package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestMetadataContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ClientIPFromContext(ctx))
	assert.Empty(t, runAttrs(ctx))

	ctx = ContextWithClientIP(ctx, "203.0.113.9")
	ctx = ContextWithUserAgent(ctx, "curl/8.0")

	assert.Equal(t, "203.0.113.9", ClientIPFromContext(ctx))
	assert.Equal(t, "curl/8.0", UserAgentFromContext(ctx))
	assert.Equal(t, []any{"client_ip", "203.0.113.9", "user_agent", "curl/8.0"}, runAttrs(ctx))
}
