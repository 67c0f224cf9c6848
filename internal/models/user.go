package models

import "time"

// User represents a registered account in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Image        string    `json:"image"`
	Places       []string  `json:"places"`
	CreatedAt    time.Time `json:"createdAt"`
}
