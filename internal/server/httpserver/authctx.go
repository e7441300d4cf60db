package httpserver

import "context"

type ctxKey string

const usernameKey ctxKey = "pv.username"

// WithUsername stores the authenticated username in context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromCtx fetches the authenticated username from context.
func UsernameFromCtx(ctx context.Context) (string, bool) {
	v := ctx.Value(usernameKey)
	if v == nil {
		return "", false
	}
	u, ok := v.(string)
	return u, ok && u != ""
}
