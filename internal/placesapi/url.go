package placesapi

import (
	"regexp"
	"strconv"
)

var (
	// place_id query parameter, the most reliable shape. Any non-empty
	// value is taken as-is; the lookup service is the authority on
	// whether it resolves.
	placeIDParamRe = regexp.MustCompile(`place_id=([a-zA-Z0-9_:-]+)`)

	// Embedded-data blob: the identifier sits behind a !1s marker. Short
	// matches are other blob segments, so a minimum length guards
	// against false positives.
	embeddedIDRe = regexp.MustCompile(`!1s([a-zA-Z0-9_:-]+)`)

	// Viewport hint: an @lat,lng segment in the URL path.
	coordsRe = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`)
)

const minEmbeddedIDLen = 20

// PlaceIDFromURL mines a location-reference URL for a stable place
// identifier. It recognizes the place_id query parameter and the
// embedded-data blob format.
func PlaceIDFromURL(rawURL string) (string, bool) {
	if m := placeIDParamRe.FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	if m := embeddedIDRe.FindStringSubmatch(rawURL); m != nil && len(m[1]) >= minEmbeddedIDLen {
		return m[1], true
	}
	return "", false
}

// CoordsFromURL extracts the @lat,lng viewport hint, when present, for
// biasing a free-text search.
func CoordsFromURL(rawURL string) (*LatLng, bool) {
	m := coordsRe.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, false
	}
	return &LatLng{Latitude: lat, Longitude: lng}, true
}
