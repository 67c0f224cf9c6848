package models

import "time"

// Location is a pair of geographic coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place represents a user-owned location entry.
type Place struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Location    Location  `json:"location"`
	Image       string    `json:"image"`
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"createdAt"`
}
