package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moevm/nosql1h25-cleanday/internal/auth"
)

func TestRequireAuth(t *testing.T) {
	svc := auth.NewService("test-secret")

	var gotLogin string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, ok := LoginFromContext(r.Context())
		require.True(t, ok)
		gotLogin = login
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAuth(svc)(next)

	token, err := svc.CreateAccessToken("boriss")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "boriss", gotLogin)
}

func TestRequireAuthRejects(t *testing.T) {
	svc := auth.NewService("test-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})
	protected := RequireAuth(svc)(next)

	foreign, err := auth.NewService("other-secret").CreateAccessToken("boriss")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic Ym9yaXNzOjEyMzQ="},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-token"},
		{"foreign signature", "Bearer " + foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/auth/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, r)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
