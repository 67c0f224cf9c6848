package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort       int
	DatabasePath     string
	UploadPath       string // Base path for uploaded image files
	JWTSecret        string
	GeocoderEndpoint string
	GeocoderAPIKey   string // Empty means the random stub geocoder is used
	SweepSchedule    string // Cron expression for the upload sweeper
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "5000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./yourplaces.db"),
		UploadPath:       getEnv("UPLOAD_PATH", "./uploads/images"),
		JWTSecret:        getEnv("JWT_SECRET", "supersecret_dont_share"),
		GeocoderEndpoint: getEnv("GEOCODER_ENDPOINT", "https://maps.googleapis.com/maps/api/geocode/json"),
		GeocoderAPIKey:   getEnv("GEOCODER_API_KEY", ""),
		SweepSchedule:    getEnv("SWEEP_SCHEDULE", "@every 1h"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
