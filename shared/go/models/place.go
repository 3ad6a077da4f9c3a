package models

import "time"

// Place is a saved location owned by exactly one user.
type Place struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Notes     string    `json:"notes"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	Hours     string    `json:"hours"`
	IsPublic  bool      `json:"is_public"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceFilter narrows place listings.
type PlaceFilter struct {
	Tag   string
	Query string
}
