package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sdelacruz/yourplaces-be/internal/api/handlers"
	"github.com/sdelacruz/yourplaces-be/internal/auth"
	"github.com/sdelacruz/yourplaces-be/internal/services"
	"github.com/sdelacruz/yourplaces-be/internal/uploads"
	"github.com/sdelacruz/yourplaces-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	placeService services.PlaceServiceProvider,
	userService services.UserServiceProvider,
	eventService services.EventServiceProvider,
	files *uploads.Store,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Any origin may call the API; the frontend is served elsewhere.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		MaxAge:         300,
	}))

	// Initialize handlers
	placeHandler := handlers.NewPlaceHandler(placeService, files)
	userHandler := handlers.NewUserHandler(userService, files)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Uploaded images are served read-only.
	fileServer := http.StripPrefix("/uploads/images/", http.FileServer(http.Dir(files.Dir())))
	r.Get("/uploads/images/*", fileServer.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/places", func(r chi.Router) {
			r.Get("/{pid}", placeHandler.Get)
			r.Get("/user/{uid}", placeHandler.ListByUser)

			// Mutations require a valid bearer token.
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware())
				r.Post("/", placeHandler.Create)
				r.Patch("/{pid}", placeHandler.Update)
				r.Delete("/{pid}", placeHandler.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/signup", userHandler.Signup)
			r.Post("/login", userHandler.Login)
			r.Get("/{uid}", userHandler.Get)
		})

		r.Get("/events/recent", eventHandler.Recent)
		r.Get("/ws", wsHandler.Serve)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Could not find this route"})
	})

	return r
}
