package middleware

import (
	"errors"
	"net/http"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/metrics"
	"farmacia-catalogo/pkg/logger"
	"farmacia-catalogo/pkg/utils"
)

// AuthGate turns a bearer token into the caller's principal.
type AuthGate struct {
	tokens *utils.JWTManager
}

func NewAuthGate(tokens *utils.JWTManager) *AuthGate {
	return &AuthGate{tokens: tokens}
}

// Authenticate reads the token from "Authorization" (or a raw lowercase
// "authorization" key) and verifies it. Failures are *utils.AuthError.
func (g *AuthGate) Authenticate(h http.Header) (*domain.Principal, error) {
	claims, err := g.tokens.Validate(utils.BearerToken(h))
	if err != nil {
		return nil, err
	}
	return &domain.Principal{
		TenantID: claims.TenantID,
		Subject:  claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}

// Middleware rejects unauthenticated requests with 401 and otherwise stores
// the principal, plus a tenant-scoped logger, in the request context.
func (g *AuthGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.Authenticate(r.Header)
		if err != nil {
			var authErr *utils.AuthError
			if !errors.As(err, &authErr) {
				authErr = &utils.AuthError{Kind: utils.TokenError, Err: err}
			}
			metrics.AuthFailures.WithLabelValues(string(authErr.Kind)).Inc()

			ev := logger.WithContext(r.Context()).Warn()
			if authErr.Kind == utils.TokenError {
				ev = logger.WithContext(r.Context()).Error()
			}
			ev.Err(err).Str("kind", string(authErr.Kind)).Msg("Rejected request")

			utils.WriteError(w, http.StatusUnauthorized, authErr.Message())
			return
		}

		noteTenant(r.Context(), principal.TenantID)
		ctx := domain.ContextWithPrincipal(r.Context(), principal)
		tenantLogger := logger.WithTenant(*logger.WithContext(ctx), principal.TenantID)
		ctx = logger.NewContext(ctx, &tenantLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
