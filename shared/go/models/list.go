package models

import "time"

// List groups places under a user-chosen name.
type List struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListWithPlaces is a list together with its member places, used for
// detail views and shared read-only views.
type ListWithPlaces struct {
	List
	Places []*Place `json:"places"`
}
