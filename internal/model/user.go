package model

import "time"

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public view of a user
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
