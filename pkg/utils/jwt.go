package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AuthErrorKind string

const (
	TokenMissing AuthErrorKind = "TokenMissing"
	TokenExpired AuthErrorKind = "TokenExpired"
	TokenInvalid AuthErrorKind = "TokenInvalid"
	TokenError   AuthErrorKind = "TokenError"
)

var authMessages = map[AuthErrorKind]string{
	TokenMissing: "Token requerido",
	TokenExpired: "Token expirado",
	TokenInvalid: "Token inválido",
	TokenError:   "Error validando token",
}

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the text shown to the client.
func (e *AuthError) Message() string {
	if msg, ok := authMessages[e.Kind]; ok {
		return msg
	}
	return authMessages[TokenError]
}

// TokenClaims is what the identity service puts in a bearer token.
type TokenClaims struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

const bearerPrefix = "Bearer "

// BearerToken returns the token from "Authorization", falling back to a raw
// lowercase "authorization" key for header maps built outside net/http.
func BearerToken(h http.Header) string {
	candidates := []string{h.Get("Authorization")}
	if vals := h["authorization"]; len(vals) > 0 {
		candidates = append(candidates, vals[0])
	}
	for _, v := range candidates {
		if strings.HasPrefix(v, bearerPrefix) {
			if token := v[len(bearerPrefix):]; token != "" {
				return token
			}
		}
	}
	return ""
}

// JWTManager verifies HS-signed tokens with one shared secret. The secret is
// handed in at construction; nothing here reads the environment.
type JWTManager struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})),
	}
}

// Generate signs a token for tenantID. The catalog never issues tokens itself;
// this exists for tests and local tooling.
func (m *JWTManager) Generate(tenantID, subject, email, role string, expiry time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("jwt secret not set")
	}
	now := time.Now()
	claims := TokenClaims{
		TenantID: tenantID,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate verifies the token and classifies any failure into an *AuthError.
func (m *JWTManager) Validate(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, &AuthError{Kind: TokenMissing}
	}
	if len(m.secret) == 0 {
		return nil, &AuthError{Kind: TokenError, Err: errors.New("jwt secret not set")}
	}

	claims := &TokenClaims{}
	token, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !token.Valid {
		return nil, &AuthError{Kind: TokenInvalid, Err: errors.New("token not valid")}
	}
	if claims.TenantID == "" {
		return nil, &AuthError{Kind: TokenInvalid, Err: errors.New("missing tenant_id claim")}
	}
	return claims, nil
}

func classifyJWTError(err error) *AuthError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &AuthError{Kind: TokenExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return &AuthError{Kind: TokenInvalid, Err: err}
	default:
		return &AuthError{Kind: TokenError, Err: err}
	}
}
