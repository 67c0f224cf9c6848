package services

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sdelacruz/yourplaces-be/internal/geo"
	"github.com/sdelacruz/yourplaces-be/internal/httperr"
	"github.com/sdelacruz/yourplaces-be/internal/models"
	"github.com/sdelacruz/yourplaces-be/internal/uploads"
)

// PlaceServiceProvider defines the interface for place services.
type PlaceServiceProvider interface {
	GetPlaceByID(id string) (models.Place, error)
	GetPlacesByUser(userID string) ([]models.Place, error)
	CreatePlace(ctx context.Context, title, description, address, imagePath, creatorID string) (models.Place, error)
	UpdatePlace(id, requesterID, title, description string) (models.Place, error)
	DeletePlace(id, requesterID string) error
}

// PlaceService provides business logic for the places catalog. Creating and
// deleting a place touch two tables — the place row and the owner's forward
// list — and run inside a single transaction so that readers never observe
// one side without the other.
type PlaceService struct {
	db       *sql.DB
	geocoder geo.Geocoder
	files    *uploads.Store
	events   EventServiceProvider
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(db *sql.DB, geocoder geo.Geocoder, files *uploads.Store, events EventServiceProvider) *PlaceService {
	return &PlaceService{db: db, geocoder: geocoder, files: files, events: events}
}

// GetPlaceByID retrieves a single place by its ID.
func (s *PlaceService) GetPlaceByID(id string) (models.Place, error) {
	place, err := scanPlace(s.db.QueryRow(
		"SELECT id, title, description, address, lat, lng, image, creator, created_at FROM places WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Place{}, httperr.New(http.StatusNotFound, "Could not find the place for the provided id")
		}
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Something went wrong, could not find the place")
	}
	return place, nil
}

// GetPlacesByUser retrieves all places owned by the given user, walking the
// user's forward list. A missing user is a not-found, not an empty result.
func (s *PlaceService) GetPlacesByUser(userID string) ([]models.Place, error) {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE id = ?", userID).Scan(&exists); err != nil {
		return nil, httperr.Wrap(err, http.StatusInternalServerError, "Something went wrong, please try again")
	}
	if exists == 0 {
		return nil, httperr.New(http.StatusNotFound, "Could not find places for the provided user id")
	}

	rows, err := s.db.Query(`
	SELECT p.id, p.title, p.description, p.address, p.lat, p.lng, p.image, p.creator, p.created_at
	FROM user_places up JOIN places p ON p.id = up.place_id
	WHERE up.user_id = ?`, userID)
	if err != nil {
		return nil, httperr.Wrap(err, http.StatusInternalServerError, "Something went wrong, please try again")
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, httperr.Wrap(err, http.StatusInternalServerError, "Something went wrong, please try again")
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.Wrap(err, http.StatusInternalServerError, "Something went wrong, please try again")
	}
	return places, nil
}

// CreatePlace geocodes the address and writes the place together with the
// owner's forward-list entry in one transaction. On any failure the whole
// operation rolls back; no half-linked place is ever visible.
func (s *PlaceService) CreatePlace(ctx context.Context, title, description, address, imagePath, creatorID string) (models.Place, error) {
	location, err := s.geocoder.Resolve(ctx, address)
	if err != nil {
		return models.Place{}, err
	}

	place := models.Place{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Address:     address,
		Location:    location,
		Image:       imagePath,
		Creator:     creatorID,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Creating place failed, please try again")
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(1) FROM users WHERE id = ?", creatorID).Scan(&exists); err != nil {
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Creating place failed, please try again")
	}
	if exists == 0 {
		return models.Place{}, httperr.New(http.StatusNotFound, "Could not find user for provided id")
	}

	_, err = tx.Exec(`
	INSERT INTO places (id, title, description, address, lat, lng, image, creator)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		place.ID, place.Title, place.Description, place.Address,
		place.Location.Lat, place.Location.Lng, place.Image, place.Creator)
	if err != nil {
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Creating place failed, please try again")
	}

	_, err = tx.Exec("INSERT INTO user_places (user_id, place_id) VALUES (?, ?)", creatorID, place.ID)
	if err != nil {
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Creating place failed, please try again")
	}

	if err = tx.Commit(); err != nil {
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Creating place failed, please try again")
	}

	s.events.Record("place.created", "info", "Place "+place.Title+" created", &place.ID)
	return s.GetPlaceByID(place.ID)
}

// UpdatePlace applies the editable fields of a place. Only the creator may
// edit; only one table mutates, so no transaction is needed.
func (s *PlaceService) UpdatePlace(id, requesterID, title, description string) (models.Place, error) {
	place, err := s.GetPlaceByID(id)
	if err != nil {
		return models.Place{}, err
	}
	if place.Creator != requesterID {
		return models.Place{}, httperr.New(http.StatusUnauthorized, "You are not allowed to edit this place")
	}

	_, err = s.db.Exec("UPDATE places SET title = ?, description = ? WHERE id = ?", title, description, id)
	if err != nil {
		return models.Place{}, httperr.Wrap(err, http.StatusInternalServerError, "Something went wrong, could not update place")
	}

	s.events.Record("place.updated", "info", "Place "+title+" updated", &id)
	return s.GetPlaceByID(id)
}

// DeletePlace removes a place and its forward-list entry atomically, then
// best-effort deletes the stored image. Image cleanup is outside the
// consistency guarantee: a failure there is logged, never surfaced.
func (s *PlaceService) DeletePlace(id, requesterID string) error {
	place, err := s.GetPlaceByID(id)
	if err != nil {
		return err
	}
	if place.Creator != requesterID {
		return httperr.New(http.StatusUnauthorized, "You are not allowed to delete this place")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return httperr.Wrap(err, http.StatusInternalServerError, "Could not delete the place, please try again")
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM places WHERE id = ?", id); err != nil {
		return httperr.Wrap(err, http.StatusInternalServerError, "Could not delete the place, please try again")
	}
	if _, err = tx.Exec("DELETE FROM user_places WHERE user_id = ? AND place_id = ?", place.Creator, id); err != nil {
		return httperr.Wrap(err, http.StatusInternalServerError, "Could not delete the place, please try again")
	}
	if err = tx.Commit(); err != nil {
		return httperr.Wrap(err, http.StatusInternalServerError, "Could not delete the place, please try again")
	}

	if s.files != nil {
		s.files.Remove(place.Image)
	}
	log.Info().Str("place_id", id).Str("user_id", requesterID).Msg("Place deleted")
	s.events.Record("place.deleted", "info", "Place "+place.Title+" deleted", &id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (models.Place, error) {
	var place models.Place
	var lat, lng sql.NullFloat64
	var image sql.NullString
	err := row.Scan(&place.ID, &place.Title, &place.Description, &place.Address,
		&lat, &lng, &image, &place.Creator, &place.CreatedAt)
	if err != nil {
		return models.Place{}, err
	}
	place.Location = models.Location{Lat: lat.Float64, Lng: lng.Float64}
	place.Image = image.String
	return place, nil
}
