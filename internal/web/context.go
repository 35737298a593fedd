package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvview/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for run logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, r.RemoteAddr) // already resolved by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
