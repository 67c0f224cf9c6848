package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sdelacruz/yourplaces-be/internal/api"
	"github.com/sdelacruz/yourplaces-be/internal/auth"
	"github.com/sdelacruz/yourplaces-be/internal/config"
	"github.com/sdelacruz/yourplaces-be/internal/database"
	"github.com/sdelacruz/yourplaces-be/internal/geo"
	"github.com/sdelacruz/yourplaces-be/internal/logger"
	"github.com/sdelacruz/yourplaces-be/internal/monitoring"
	"github.com/sdelacruz/yourplaces-be/internal/services"
	"github.com/sdelacruz/yourplaces-be/internal/uploads"
	"github.com/sdelacruz/yourplaces-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Ensure the directory for uploaded images exists
	if err := os.MkdirAll(cfg.UploadPath, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	auth.Init(cfg.JWTSecret)

	// Without an API key the geocoder falls back to random coordinates.
	var geocoder geo.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = geo.NewRemoteGeocoder(cfg.GeocoderEndpoint, cfg.GeocoderAPIKey)
	} else {
		geocoder = geo.NewStubGeocoder()
	}

	files := uploads.NewStore(cfg.UploadPath)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, eventService)
	placeService := services.NewPlaceService(db, geocoder, files, eventService)

	// Set up and run the background upload sweeper
	sweeper, err := monitoring.NewSweeper(db, cfg.UploadPath, cfg.SweepSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize upload sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(hub, placeService, userService, eventService, files)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
