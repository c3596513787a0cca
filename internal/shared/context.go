package shared

import "context"

// Principal is the already-authenticated caller injected by the upstream
// gateway. This service performs no authentication itself.
type Principal struct {
	ID      int64
	Name    string
	Email   string
	Phone   string
	Company string
	Role    string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
