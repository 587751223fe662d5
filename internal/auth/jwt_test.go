package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	require.NoError(t, Init())

	token, err := GenerateToken("u-1", "clerk@example.com", "operator")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "clerk@example.com", claims.Email)
	require.Equal(t, "operator", claims.Role)
}

func TestMiddlewareStoresClaimsInContext(t *testing.T) {
	require.NoError(t, Init())

	token, err := GenerateToken("u-2", "admin@example.com", "admin")
	require.NoError(t, err)

	var seen *Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = GetClaimsFromContext(r.Context())
		require.NoError(t, err)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTMiddleware(inner).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, "admin@example.com", seen.Email)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	require.NoError(t, Init())

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	JWTMiddleware(inner).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
}

func TestPublicPathsSkipAuth(t *testing.T) {
	require.NoError(t, Init())

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	rec := httptest.NewRecorder()
	JWTMiddleware(inner).ServeHTTP(rec, req)

	require.True(t, called)

	// No claims without a token, even on public paths
	_, err := GetClaimsFromContext(req.Context())
	require.Error(t, err)
}
