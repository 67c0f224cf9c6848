package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sdelacruz/yourplaces-be/internal/auth"
	"github.com/sdelacruz/yourplaces-be/internal/httperr"
	"github.com/sdelacruz/yourplaces-be/internal/services"
	"github.com/sdelacruz/yourplaces-be/internal/uploads"
)

const maxUploadSize = 10 << 20 // 10 MiB

// PlaceHandler handles HTTP requests for the places catalog.
type PlaceHandler struct {
	service services.PlaceServiceProvider
	files   *uploads.Store
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(service services.PlaceServiceProvider, files *uploads.Store) *PlaceHandler {
	return &PlaceHandler{service: service, files: files}
}

// Get handles GET /api/places/{pid}.
func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	place, err := h.service.GetPlaceByID(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"place": place})
}

// ListByUser handles GET /api/places/user/{uid}.
func (h *PlaceHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.GetPlacesByUser(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"places": places})
}

// Create handles POST /api/places. The body is multipart: text fields plus
// an image file. Field validation happens before anything reaches the
// store; if the store rejects the request after the image was saved, the
// saved file is removed again.
func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, r, httperr.New(http.StatusUnauthorized, "Authentication failed"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := r.FormValue("description")
	address := strings.TrimSpace(r.FormValue("address"))
	if title == "" || len(description) < 5 || address == "" {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}
	defer file.Close()

	imagePath, err := h.files.Save(file, header)
	if err != nil {
		writeError(w, r, httperr.Wrap(err, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}

	place, err := h.service.CreatePlace(r.Context(), title, description, address, imagePath, claims.UserID)
	if err != nil {
		h.files.Remove(imagePath)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"place": place})
}

// Update handles PATCH /api/places/{pid}. Only title and description are
// editable.
func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, r, httperr.New(http.StatusUnauthorized, "Authentication failed"))
		return
	}

	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" || len(payload.Description) < 5 {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}

	place, err := h.service.UpdatePlace(chi.URLParam(r, "pid"), claims.UserID, payload.Title, payload.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"place": place})
}

// Delete handles DELETE /api/places/{pid}.
func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, r, httperr.New(http.StatusUnauthorized, "Authentication failed"))
		return
	}

	if err := h.service.DeletePlace(chi.URLParam(r, "pid"), claims.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Place deleted"})
}
