package handlers

import (
	"net/http"

	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

type memberListResponse struct {
	Users      []models.Member `json:"users"`
	TotalCount int             `json:"total_count"`
}

type commentListResponse struct {
	Contents   []models.Comment `json:"contents"`
	TotalCount int              `json:"total_count"`
}

type logListResponse struct {
	Contents   []models.Log `json:"contents"`
	TotalCount int          `json:"total_count"`
}

type imageListResponse struct {
	Contents []models.Image `json:"contents"`
}

func (h *Handler) GetCleandays(w http.ResponseWriter, r *http.Request) {
	params, err := parseCleandaysParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, cleandays, err := h.DB.ListCleandays(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cleandayListResponse{Cleandays: cleandays, TotalCount: total})
}

func (h *Handler) CreateCleanday(w http.ResponseWriter, r *http.Request) {
	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var cc models.CreateCleanday
	if err := decode(r, &cc); err != nil {
		h.writeError(w, err)
		return
	}

	key, err := h.DB.CreateCleanday(r.Context(), actor.Key, cc)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cleanday, err := h.DB.GetCleandayByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cleanday)
}

func (h *Handler) GetCleanday(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	cleanday, err := h.DB.GetCleandayByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cleanday)
}

func (h *Handler) UpdateCleanday(w http.ResponseWriter, r *http.Request) {
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

	var upd models.UpdateCleanday
	if err := decode(r, &upd); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.UpdateCleanday(r.Context(), actor.Key, key, upd); err != nil {
		h.writeError(w, err)
		return
	}

	cleanday, err := h.DB.GetCleandayByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cleanday)
}

func (h *Handler) GetCleandayMembers(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := parseMembersParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, members, err := h.DB.ListMembers(r.Context(), key, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, memberListResponse{Users: members, TotalCount: total})
}

func (h *Handler) JoinCleanday(w http.ResponseWriter, r *http.Request) {
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

	var join models.JoinCleanday
	if err := decode(r, &join); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.JoinCleanday(r.Context(), actor.Key, key, join); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UpdateMyParticipation меняет собственное участие текущего пользователя.
func (h *Handler) UpdateMyParticipation(w http.ResponseWriter, r *http.Request) {
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

	var upd models.UpdateParticipation
	if err := decode(r, &upd); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.UpdateParticipation(r.Context(), actor.Key, key, upd); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMyParticipation(w http.ResponseWriter, r *http.Request) {
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

	participation, err := h.DB.GetParticipation(r.Context(), actor.Key, key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, participation)
}

func (h *Handler) GetCleandayComments(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := parseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, comments, err := h.DB.ListComments(r.Context(), key, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commentListResponse{Contents: comments, TotalCount: total})
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	var cc models.CreateComment
	if err := decode(r, &cc); err != nil {
		h.writeError(w, err)
		return
	}

	if _, err := h.DB.CreateComment(r.Context(), actor.Key, key, cc.Text); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) GetCleandayLogs(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := parseLogsParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, logs, err := h.DB.ListCleandayLogs(r.Context(), key, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logListResponse{Contents: logs, TotalCount: total})
}

func (h *Handler) GetCleandayRequirements(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	reqs, err := h.DB.GetCleandayRequirements(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *Handler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	reqKey, err := keyParam(r, "req_id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	actor, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.DeleteRequirement(r.Context(), actor.Key, key, reqKey); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCleandayImages(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	images, err := h.DB.ListCleandayImages(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, imageListResponse{Contents: images})
}

func (h *Handler) AddCleandayImages(w http.ResponseWriter, r *http.Request) {
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

	var ci models.CreateImages
	if err := decode(r, &ci); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.AddCleandayImages(r.Context(), actor.Key, key, ci.Images); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) EndCleanday(w http.ResponseWriter, r *http.Request) {
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

	var req models.EndCleanday
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.EndCleanday(r.Context(), actor.Key, key, req); err != nil {
		h.writeError(w, err)
		return
	}

	cleanday, err := h.DB.GetCleandayByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cleanday)
}
