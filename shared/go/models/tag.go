package models

// Tag labels places. Names are unique per owner, compared case-insensitively.
type Tag struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// TagWithCount pairs a tag with the number of places carrying it.
type TagWithCount struct {
	Tag
	PlaceCount int `json:"place_count"`
}
