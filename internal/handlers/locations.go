package handlers

import (
	"net/http"

	"github.com/moevm/nosql1h25-cleanday/internal/models"
)

type locationListResponse struct {
	Contents   []models.Location `json:"contents"`
	TotalCount int               `json:"total_count"`
}

type cityListResponse struct {
	Contents   []models.City `json:"contents"`
	TotalCount int           `json:"total_count"`
}

func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	list, err := parseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	params := models.LocationsParams{
		ListParams: list,
		CityName:   r.URL.Query().Get("city"),
	}

	total, locations, err := h.DB.ListLocations(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, locationListResponse{Contents: locations, TotalCount: total})
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	if _, err := h.currentUser(r); err != nil {
		h.writeError(w, err)
		return
	}

	var cl models.CreateLocation
	if err := decode(r, &cl); err != nil {
		h.writeError(w, err)
		return
	}

	location, err := h.DB.CreateLocation(r.Context(), cl)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, location)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	location, err := h.DB.GetLocationByKey(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, location)
}

func (h *Handler) GetLocationImages(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	images, err := h.DB.ListLocationImages(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, imageListResponse{Contents: images})
}

func (h *Handler) AddLocationImages(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, err := h.currentUser(r); err != nil {
		h.writeError(w, err)
		return
	}

	var ci models.CreateImages
	if err := decode(r, &ci); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.DB.AddLocationImages(r.Context(), key, ci.Images); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) GetCities(w http.ResponseWriter, r *http.Request) {
	list, err := parseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	total, cities, err := h.DB.ListCities(r.Context(), models.CitiesParams{ListParams: list})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cityListResponse{Contents: cities, TotalCount: total})
}

func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	if _, err := h.currentUser(r); err != nil {
		h.writeError(w, err)
		return
	}

	var cc models.CreateCity
	if err := decode(r, &cc); err != nil {
		h.writeError(w, err)
		return
	}

	city, err := h.DB.CreateCity(r.Context(), cc.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, city)
}
