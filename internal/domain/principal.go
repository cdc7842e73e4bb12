package domain

import "context"

type ContextKey string

const PrincipalContextKey ContextKey = "principal"

// Principal is the verified caller. TenantID is the only claim the catalog relies on.
type Principal struct {
	TenantID string `json:"tenant_id"`
	Subject  string `json:"sub,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(*Principal)
	return p, ok && p != nil
}
