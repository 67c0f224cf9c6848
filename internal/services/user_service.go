package services

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sdelacruz/yourplaces-be/internal/httperr"
	"github.com/sdelacruz/yourplaces-be/internal/models"
)

// bcryptCost matches the work factor used when accounts were first created.
const bcryptCost = 12

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetAllUsers() ([]models.User, error)
	GetUserByID(id string) (models.User, error)
	Signup(username, password, imagePath string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events EventServiceProvider) *UserService {
	return &UserService{db: db, events: events}
}

// GetAllUsers retrieves every user, with their forward place lists.
// Password hashes stay behind: the model never serializes them.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, username, image, created_at FROM users")
	if err != nil {
		return nil, httperr.Wrap(err, http.StatusInternalServerError, "Could not find any users")
	}
	defer rows.Close()

	var users []models.User
	byID := make(map[string]int)
	for rows.Next() {
		var user models.User
		var image sql.NullString
		if err := rows.Scan(&user.ID, &user.Username, &image, &user.CreatedAt); err != nil {
			return nil, httperr.Wrap(err, http.StatusInternalServerError, "Could not find any users")
		}
		user.Image = image.String
		user.Places = []string{}
		byID[user.ID] = len(users)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.Wrap(err, http.StatusInternalServerError, "Could not find any users")
	}

	linkRows, err := s.db.Query("SELECT user_id, place_id FROM user_places")
	if err != nil {
		return nil, httperr.Wrap(err, http.StatusInternalServerError, "Could not find any users")
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var userID, placeID string
		if err := linkRows.Scan(&userID, &placeID); err != nil {
			return nil, httperr.Wrap(err, http.StatusInternalServerError, "Could not find any users")
		}
		if i, ok := byID[userID]; ok {
			users[i].Places = append(users[i].Places, placeID)
		}
	}
	return users, linkRows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	var image sql.NullString
	row := s.db.QueryRow("SELECT id, username, image, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &image, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, httperr.New(http.StatusNotFound, "Could not find the user for the provided id")
		}
		return models.User{}, httperr.Wrap(err, http.StatusInternalServerError, "Could not find the user for the provided id")
	}
	user.Image = image.String

	user.Places, err = s.placeIDsFor(id)
	if err != nil {
		return models.User{}, httperr.Wrap(err, http.StatusInternalServerError, "Could not find the user for the provided id")
	}
	return user, nil
}

func (s *UserService) placeIDsFor(userID string) ([]string, error) {
	rows, err := s.db.Query("SELECT place_id FROM user_places WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Signup creates a new user account, hashing the password before storage.
func (s *UserService) Signup(username, password, imagePath string) (models.User, error) {
	var existing int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&existing)
	if err != nil {
		return models.User{}, httperr.Wrap(err, http.StatusInternalServerError, "Signing up failed, please try again")
	}
	if existing > 0 {
		return models.User{}, httperr.New(http.StatusUnprocessableEntity, "User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, httperr.Wrap(err, http.StatusInternalServerError, "Could not create user, please try again")
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
		Image:    imagePath,
		Places:   []string{},
	}

	_, err = s.db.Exec("INSERT INTO users(id, username, password_hash, image) VALUES(?, ?, ?, ?)",
		user.ID, user.Username, string(hashedPassword), user.Image)
	if err != nil {
		return models.User{}, httperr.Wrap(err, http.StatusInternalServerError, "Signing up failed, please try again")
	}

	s.events.Record("user.signup", "info", "User "+user.Username+" signed up", nil)
	return user, nil
}

// Authenticate verifies a user's credentials and returns the account.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	var user models.User
	var passwordHash string
	var image sql.NullString
	row := s.db.QueryRow("SELECT id, username, password_hash, image, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &passwordHash, &image, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, httperr.New(http.StatusUnauthorized, "Invalid username or password")
		}
		return models.User{}, httperr.Wrap(err, http.StatusInternalServerError, "Logging in failed, please try again")
	}
	user.Image = image.String

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return models.User{}, httperr.New(http.StatusUnauthorized, "Invalid username or password")
	}
	return user, nil
}
