package services

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sdelacruz/yourplaces-be/internal/models"
	"github.com/sdelacruz/yourplaces-be/internal/websocket"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(eventType, level, message string, placeID *string)
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService persists audit events and pushes them to websocket clients.
type EventService struct {
	db  *sql.DB
	hub *websocket.Hub // may be nil when no live feed is wanted
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, hub *websocket.Hub) *EventService {
	return &EventService{db: db, hub: hub}
}

// Record logs a new event. Event logging never fails the calling
// operation; errors are logged and swallowed.
func (s *EventService) Record(eventType, level, message string, placeID *string) {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		PlaceID: placeID,
	}

	_, err := s.db.Exec("INSERT INTO events (id, type, level, message, place_id) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.PlaceID)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
		return
	}

	if s.hub != nil {
		payload, err := json.Marshal(websocket.Message{Action: "event", Payload: event})
		if err == nil {
			select {
			case s.hub.Broadcast <- payload:
			default:
			}
		}
	}
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, place_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.PlaceID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
