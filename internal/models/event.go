package models

import "time"

// Event is an audit log entry for a notable change in the catalog.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // e.g. "place.created", "user.signup"
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	PlaceID   *string   `json:"placeId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
