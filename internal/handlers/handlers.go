package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/db"
	"github.com/moevm/nosql1h25-cleanday/internal/middleware"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

type Handler struct {
	DB   *db.Database
	Auth *auth.Service
	Log  *zap.Logger
}

func New(database *db.Database, authService *auth.Service, logger *zap.Logger) *Handler {
	return &Handler{
		DB:   database,
		Auth: authService,
		Log:  logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, auth.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: err.Error()})
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	default:
		h.Log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", apperr.ErrValidation)
	}
	return nil
}

// keyParam достаёт ключ сущности из пути. Ключ, который не может быть
// ключом вообще, равнозначен отсутствующей сущности.
func keyParam(r *http.Request, name string) (string, error) {
	key := chi.URLParam(r, name)
	if uuid.Validate(key) != nil {
		return "", fmt.Errorf("%s %q: %w", name, key, apperr.ErrNotFound)
	}
	return key, nil
}

// currentUser — пользователь, чей логин положил в контекст RequireAuth.
func (h *Handler) currentUser(r *http.Request) (models.User, error) {
	login, ok := middleware.LoginFromContext(r.Context())
	if !ok {
		return models.User{}, apperr.ErrUnauthorized
	}

	user, err := h.DB.GetRawUserByLogin(r.Context(), login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, apperr.ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}
