package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomembros/internal/domain"
	"gomembros/internal/pkg/middleware"
	"gomembros/internal/pkg/token"
)

const testSecret = "segredo-de-teste"

func newTokenService() *token.Service {
	return token.NewService(testSecret, time.Hour, "")
}

// claimsEcho devolve no corpo as claims que o middleware anexou ao contexto.
func claimsEcho(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write([]byte(claims.UserID + "|" + string(claims.Role)))
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTokenService()
	tok, err := svc.GenerateToken("user-1", "secretaria")
	require.NoError(t, err)

	handler := middleware.NewAuthMiddleware(svc)(http.HandlerFunc(claimsEcho))

	req := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|secretaria", rec.Body.String())
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	handler := middleware.NewAuthMiddleware(newTokenService())(http.HandlerFunc(claimsEcho))

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)

		var body domain.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "UNAUTHORIZED", body.Category)
		assert.Equal(t, http.StatusUnauthorized, body.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	other := token.NewService("outro-segredo", time.Hour, "")
	tok, err := other.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	handler := middleware.NewAuthMiddleware(newTokenService())(http.HandlerFunc(claimsEcho))

	req := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPermissionMiddleware(t *testing.T) {
	svc := newTokenService()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := middleware.NewAuthMiddleware(svc)(middleware.PermissionMiddleware(domain.RoleAdmin)(ok))

	cases := map[string]int{
		"admin":         http.StatusNoContent,
		"secretaria":    http.StatusForbidden,
		"authenticated": http.StatusForbidden,
	}
	for role, want := range cases {
		tok, err := svc.GenerateToken("user-1", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/v1/members/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Code, role)
	}
}

func TestPermissionMiddleware_WithoutAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := middleware.PermissionMiddleware(domain.RoleAdmin)(ok)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/members/x", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
