package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdelacruz/yourplaces-be/internal/httperr"
	"github.com/sdelacruz/yourplaces-be/internal/models"
	"github.com/sdelacruz/yourplaces-be/internal/uploads"
)

type fixedGeocoder struct{}

func (fixedGeocoder) Resolve(context.Context, string) (models.Location, error) {
	return models.Location{Lat: 40.7484, Lng: -73.9857}, nil
}

func newPlaceFixture(t *testing.T) (*PlaceService, *UserService, *uploads.Store) {
	t.Helper()
	db := newTestDB(t)
	files := uploads.NewStore(t.TempDir())
	events := NewEventService(db, nil)
	return NewPlaceService(db, fixedGeocoder{}, files, events), NewUserService(db, events), files
}

func TestCreatePlaceReferentialSymmetry(t *testing.T) {
	placeSvc, userSvc, _ := newPlaceFixture(t)

	alice, err := userSvc.Signup("alice", "secret1", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	place, err := placeSvc.CreatePlace(context.Background(), "Tower", "A tall tower", "1 Main St", "uploads/images/t.png", alice.ID)
	if err != nil {
		t.Fatalf("CreatePlace: %v", err)
	}
	if place.Creator != alice.ID {
		t.Errorf("creator = %s, want %s", place.Creator, alice.ID)
	}
	if place.Location.Lat != 40.7484 || place.Location.Lng != -73.9857 {
		t.Errorf("location = %+v, want geocoded coordinates", place.Location)
	}

	// The owner's forward list contains the new place.
	owned, err := placeSvc.GetPlacesByUser(alice.ID)
	if err != nil {
		t.Fatalf("GetPlacesByUser: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != place.ID {
		t.Fatalf("forward list = %+v, want the created place", owned)
	}

	// And the back reference resolves to the owner.
	user, err := userSvc.GetUserByID(alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if len(user.Places) != 1 || user.Places[0] != place.ID {
		t.Errorf("user.Places = %v, want [%s]", user.Places, place.ID)
	}
}

func TestCreatePlaceUnknownCreatorRollsBack(t *testing.T) {
	placeSvc, _, _ := newPlaceFixture(t)

	_, err := placeSvc.CreatePlace(context.Background(), "Tower", "A tall tower", "1 Main St", "", "no-such-user")
	if err == nil {
		t.Fatal("CreatePlace succeeded with unknown creator")
	}
	if he := httperr.From(err); he.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", he.Status)
	}

	var count int
	if err := placeSvc.db.QueryRow("SELECT COUNT(1) FROM places").Scan(&count); err != nil {
		t.Fatalf("counting places: %v", err)
	}
	if count != 0 {
		t.Errorf("place rows after rollback = %d, want 0", count)
	}
}

func TestUpdatePlaceOwnerOnly(t *testing.T) {
	placeSvc, userSvc, _ := newPlaceFixture(t)

	alice, _ := userSvc.Signup("alice", "secret1", "")
	bob, _ := userSvc.Signup("bob", "secret2", "")

	place, err := placeSvc.CreatePlace(context.Background(), "Tower", "A tall tower", "1 Main St", "", alice.ID)
	if err != nil {
		t.Fatalf("CreatePlace: %v", err)
	}

	_, err = placeSvc.UpdatePlace(place.ID, bob.ID, "Stolen", "not yours")
	if err == nil {
		t.Fatal("non-owner update succeeded")
	}
	if he := httperr.From(err); he.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", he.Status)
	}

	// Unchanged after the rejected update.
	unchanged, err := placeSvc.GetPlaceByID(place.ID)
	if err != nil {
		t.Fatalf("GetPlaceByID: %v", err)
	}
	if unchanged.Title != "Tower" {
		t.Errorf("title = %q, want unchanged Tower", unchanged.Title)
	}

	updated, err := placeSvc.UpdatePlace(place.ID, alice.ID, "Big Tower", "An even taller tower")
	if err != nil {
		t.Fatalf("owner UpdatePlace: %v", err)
	}
	if updated.Title != "Big Tower" || updated.Description != "An even taller tower" {
		t.Errorf("updated place = %+v", updated)
	}
	if updated.Address != "1 Main St" {
		t.Errorf("address changed on update: %q", updated.Address)
	}
}

func TestDeletePlace(t *testing.T) {
	placeSvc, userSvc, files := newPlaceFixture(t)

	alice, _ := userSvc.Signup("alice", "secret1", "")
	bob, _ := userSvc.Signup("bob", "secret2", "")

	// Materialize an image file so the delete path has something to remove.
	imageName := "deadbeef.png"
	imagePath := "uploads/images/" + imageName
	if err := os.WriteFile(filepath.Join(files.Dir(), imageName), []byte("png"), 0644); err != nil {
		t.Fatalf("writing image: %v", err)
	}

	place, err := placeSvc.CreatePlace(context.Background(), "Tower", "A tall tower", "1 Main St", imagePath, alice.ID)
	if err != nil {
		t.Fatalf("CreatePlace: %v", err)
	}

	if err := placeSvc.DeletePlace(place.ID, bob.ID); err == nil {
		t.Fatal("non-owner delete succeeded")
	}
	if _, err := placeSvc.GetPlaceByID(place.ID); err != nil {
		t.Fatalf("place gone after rejected delete: %v", err)
	}

	if err := placeSvc.DeletePlace(place.ID, alice.ID); err != nil {
		t.Fatalf("owner DeletePlace: %v", err)
	}

	if _, err := placeSvc.GetPlaceByID(place.ID); err == nil {
		t.Error("place still readable after delete")
	}
	owned, err := placeSvc.GetPlacesByUser(alice.ID)
	if err != nil {
		t.Fatalf("GetPlacesByUser: %v", err)
	}
	if len(owned) != 0 {
		t.Errorf("forward list after delete = %+v, want empty", owned)
	}
	if _, err := os.Stat(filepath.Join(files.Dir(), imageName)); !os.IsNotExist(err) {
		t.Errorf("image file still present after delete")
	}
}

func TestDeletePlaceNotFound(t *testing.T) {
	placeSvc, userSvc, _ := newPlaceFixture(t)
	alice, _ := userSvc.Signup("alice", "secret1", "")

	err := placeSvc.DeletePlace("no-such-place", alice.ID)
	if err == nil {
		t.Fatal("delete of missing place succeeded")
	}
	if he := httperr.From(err); he.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", he.Status)
	}
}

func TestGetPlacesByUserUnknownUser(t *testing.T) {
	placeSvc, _, _ := newPlaceFixture(t)

	_, err := placeSvc.GetPlacesByUser("no-such-user")
	if err == nil {
		t.Fatal("GetPlacesByUser succeeded for unknown user")
	}
	if he := httperr.From(err); he.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", he.Status)
	}
}

func TestGetPlacesByUserEmptyList(t *testing.T) {
	placeSvc, userSvc, _ := newPlaceFixture(t)
	alice, _ := userSvc.Signup("alice", "secret1", "")

	places, err := placeSvc.GetPlacesByUser(alice.ID)
	if err != nil {
		t.Fatalf("GetPlacesByUser: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("places = %+v, want empty", places)
	}
}
