package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
	"github.com/moevm/nosql1h25-cleanday/internal/backup"
	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

type heatmapResponse struct {
	Contents []models.HeatmapEntry `json:"contents"`
}

const maxImportSize = 64 << 20

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DB.GetStats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func parseHeatmapParams(r *http.Request) (models.HeatmapParams, error) {
	q := r.URL.Query()
	hm := models.HeatmapParams{
		XField: q.Get("x_field"),
		YField: q.Get("y_field"),
	}
	if hm.XField == "" || hm.YField == "" {
		return hm, fmt.Errorf("x_field и y_field обязательны: %w", apperr.ErrValidation)
	}
	return hm, nil
}

func (h *Handler) GetUserHeatmap(w http.ResponseWriter, r *http.Request) {
	hm, err := parseHeatmapParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := parseUsersParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries, err := h.DB.UserHeatmap(r.Context(), hm, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, heatmapResponse{Contents: entries})
}

func (h *Handler) GetCleandayHeatmap(w http.ResponseWriter, r *http.Request) {
	hm, err := parseHeatmapParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := parseCleandaysParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries, err := h.DB.CleandayHeatmap(r.Context(), hm, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, heatmapResponse{Contents: entries})
}

// ExportData отдаёт zip-архив с JSON-дампами всех таблиц.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	if _, err := h.currentUser(r); err != nil {
		h.writeError(w, err)
		return
	}

	archive, err := backup.Export(r.Context(), h.DB)
	if err != nil {
		h.writeError(w, err)
		return
	}

	name := fmt.Sprintf("cleanday-%s.zip", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// ImportData заменяет содержимое базы данными из загруженного архива.
func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	if _, err := h.currentUser(r); err != nil {
		h.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.writeError(w, fmt.Errorf("не удалось разобрать форму: %w", apperr.ErrValidation))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, fmt.Errorf("файл 'file' обязателен: %w", apperr.ErrValidation))
		return
	}
	defer file.Close()

	archive, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := backup.Import(r.Context(), h.DB, archive); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
