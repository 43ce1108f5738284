package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func TestWriteErrorMapping(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("user: %w", apperr.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("login taken: %w", apperr.ErrConflict), http.StatusConflict},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized},
		{"validation", fmt.Errorf("%w: bad limit", apperr.ErrValidation), http.StatusUnprocessableEntity},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}
	rec := httptest.NewRecorder()

	h.writeError(rec, errors.New("pq: password authentication failed"))

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Detail)
}

func TestKeyParam(t *testing.T) {
	makeRequest := func(key string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", key)
		r := httptest.NewRequest("GET", "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	key, err := keyParam(makeRequest("8f14e45f-ceea-4671-a8a8-1f9cdd0b50b8"), "id")
	require.NoError(t, err)
	assert.Equal(t, "8f14e45f-ceea-4671-a8a8-1f9cdd0b50b8", key)

	_, err = keyParam(makeRequest("42; DROP TABLE users"), "id")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = keyParam(makeRequest(""), "id")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDecode(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Весенний субботник"}`))

	var body models.CreateCity
	require.NoError(t, decode(r, &body))
	assert.Equal(t, "Весенний субботник", body.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	err := decode(r, &body)
	require.ErrorIs(t, err, apperr.ErrValidation)
}
