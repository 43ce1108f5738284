package handlers

import (
	"errors"
	"net/http"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.RegisterUser
	if err := decode(r, &reg); err != nil {
		h.writeError(w, err)
		return
	}

	if err := auth.ValidatePassword(reg.Password); err != nil {
		h.writeError(w, err)
		return
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.DB.Register(r.Context(), reg, hash)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.Auth.CreateAccessToken(user.Login)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthToken{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var login models.LoginUser
	if err := decode(r, &login); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.DB.GetRawUserByLogin(r.Context(), login.Login)
	if err != nil {
		// Неизвестный логин и неверный пароль отвечают одинаково,
		// ошибка инфраструктуры — нет.
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid credentials"})
			return
		}
		h.writeError(w, err)
		return
	}
	if auth.CheckPassword(login.Password, user.PasswordHash) != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateAccessToken(user.Login)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthToken{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	profile, err := h.DB.GetUserByKey(r.Context(), user.Key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
