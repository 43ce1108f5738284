package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

type userListResponse struct {
	Users      []models.GetUser `json:"users"`
	TotalCount int              `json:"total_count"`
}

type cleandayListResponse struct {
	Cleandays  []models.GetCleanday `json:"cleandays"`
	TotalCount int                  `json:"total_count"`
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	params, err := parseUsersParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, users, err := h.DB.ListUsers(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userListResponse{Users: users, TotalCount: total})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.DB.GetUserByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser — редактировать можно только собственный профиль.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if actor.Key != key {
		h.writeError(w, fmt.Errorf("cannot modify another user's profile: %w", apperr.ErrUnauthorized))
		return
	}

	var upd models.UpdateUser
	if err := decode(r, &upd); err != nil {
		h.writeError(w, err)
		return
	}

	var passwordHash *string
	if upd.Password != nil {
		if err := auth.ValidatePassword(*upd.Password); err != nil {
			h.writeError(w, err)
			return
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			h.writeError(w, err)
			return
		}
		passwordHash = &hash
	}

	if err := h.DB.UpdateUser(r.Context(), key, upd, passwordHash); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.DB.GetUserByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUserAvatar(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	img, err := h.DB.GetUserAvatar(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) UpdateUserAvatar(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if actor.Key != key {
		h.writeError(w, fmt.Errorf("cannot modify another user's avatar: %w", apperr.ErrUnauthorized))
		return
	}

	var img models.CreateImage
	if err := decode(r, &img); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.SetUserAvatar(r.Context(), key, img); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckUserPassword сверяет пароль с сохранённым хэшем.
func (h *Handler) CheckUserPassword(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.DB.GetRawUserByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, auth.CheckPassword(body.Password, user.PasswordHash) == nil)
}

func (h *Handler) GetUserCleandays(w http.ResponseWriter, r *http.Request) {
	h.userCleandays(w, r, h.DB.ListUserCleandays)
}

func (h *Handler) GetUserOrganized(w http.ResponseWriter, r *http.Request) {
	h.userCleandays(w, r, h.DB.ListUserOrganized)
}

type userCleandayLister func(ctx context.Context, userKey string, params models.CleandaysParams) (int, []models.GetCleanday, error)

func (h *Handler) userCleandays(w http.ResponseWriter, r *http.Request, list userCleandayLister) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := parseCleandaysParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, cleandays, err := list(r.Context(), key, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cleandayListResponse{Cleandays: cleandays, TotalCount: total})
}
