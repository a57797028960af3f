package backend

import "context"

type scopeKey struct{}

// WithScope tags ctx with the scope id of the notifying Observer.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope id set by WithScope, or "".
func ScopeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	scope, _ := ctx.Value(scopeKey{}).(string)
	return scope
}
