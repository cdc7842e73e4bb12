package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthGate(t *testing.T) {
	tokens := utils.NewJWTManager(testSecret)
	gate := NewAuthGate(tokens)

	var seen *domain.Principal
	handler := gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = domain.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, err := tokens.Generate("acme", "u-1", "ana@acme.test", "admin", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.Generate("acme", "u-1", "", "", -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewJWTManager("other-secret").Generate("acme", "u-1", "", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     http.Header
		wantStatus int
		wantMsg    string
	}{
		{"valid bearer", http.Header{"Authorization": {"Bearer " + valid}}, http.StatusNoContent, ""},
		{"lowercase raw key", http.Header{"authorization": {"Bearer " + valid}}, http.StatusNoContent, ""},
		{"no header", http.Header{}, http.StatusUnauthorized, "Token requerido"},
		{"wrong scheme", http.Header{"Authorization": {"Basic " + valid}}, http.StatusUnauthorized, "Token requerido"},
		{"expired", http.Header{"Authorization": {"Bearer " + expired}}, http.StatusUnauthorized, "Token expirado"},
		{"other secret", http.Header{"Authorization": {"Bearer " + foreign}}, http.StatusUnauthorized, "Token inválido"},
		{"garbage", http.Header{"Authorization": {"Bearer abc.def"}}, http.StatusUnauthorized, "Token inválido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/productos", nil)
			req.Header = tt.header
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, rec))
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "acme", seen.TenantID)
			assert.Equal(t, "u-1", seen.Subject)
		})
	}
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/productos/abc", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, called)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET,POST,PUT,DELETE,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("other methods pass through with headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/productos", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, utils.ErrInternal, decodeError(t, rec))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 1, 0, time.Minute)
	defer rl.Shutdown()
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1"))
	assert.Equal(t, http.StatusOK, send("2.2.2.2"))
}

func TestRequestLogger(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /productos/{codigo}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	handler := RequestLogger(mux)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/productos/MED-1", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)
}
