// Package placesapi talks to the external places-lookup service used to
// enrich imported records that arrive without coordinates or an address.
package placesapi

import "context"

// Place is a structured place document returned by the lookup service.
type Place struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
	Phone               string   `json:"phone,omitempty"`
	Website             string   `json:"website,omitempty"`
	WeekdayDescriptions []string `json:"weekday_descriptions,omitempty"`
}

// LatLng is a coordinate pair used to bias text searches.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client defines the two lookup operations the pipeline consumes.
// A nil place with a nil error means the service found nothing.
type Client interface {
	// FetchPlace looks a place up by its stable identifier.
	FetchPlace(ctx context.Context, placeID string) (*Place, error)

	// SearchText searches free text, optionally biased toward known
	// coordinates, and returns results in service ranking order.
	SearchText(ctx context.Context, query string, bias *LatLng) ([]Place, error)
}
