package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sdelacruz/yourplaces-be/internal/auth"
	"github.com/sdelacruz/yourplaces-be/internal/httperr"
	"github.com/sdelacruz/yourplaces-be/internal/services"
	"github.com/sdelacruz/yourplaces-be/internal/uploads"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service services.UserServiceProvider
	files   *uploads.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, files *uploads.Store) *UserHandler {
	return &UserHandler{service: service, files: files}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Get handles GET /api/users/{uid}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Signup handles POST /api/users/signup. The body is multipart: username
// and password fields plus an avatar image. On any failure after the image
// was saved, the file is removed again.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || len(password) < 5 {
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

	user, err := h.service.Signup(username, password, imagePath)
	if err != nil {
		h.files.Remove(imagePath)
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		writeError(w, r, httperr.Wrap(err, http.StatusInternalServerError, "Signing up failed, please try again"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"userId":   user.ID,
		"username": user.Username,
		"token":    token,
	})
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, httperr.New(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data"))
		return
	}

	user, err := h.service.Authenticate(payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		writeError(w, r, httperr.Wrap(err, http.StatusInternalServerError, "Logging in failed, please try again"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId":   user.ID,
		"username": user.Username,
		"token":    token,
	})
}
