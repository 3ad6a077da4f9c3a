package placesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://places.googleapis.com"

	detailsFieldMask = "id,displayName,formattedAddress,location,internationalPhoneNumber,websiteUri,regularOpeningHours"
	searchFieldMask  = "places.id,places.displayName,places.formattedAddress,places.location,places.internationalPhoneNumber,places.websiteUri,places.regularOpeningHours"

	// Radius, in meters, of the circle used when a search is biased
	// toward previously known coordinates.
	searchBiasRadius = 500.0
)

// GoogleClient implements Client against the Google Places API v1.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGoogleClient creates a places client. baseURL overrides the
// production endpoint; pass "" outside of tests.
func NewGoogleClient(apiKey, baseURL string) *GoogleClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// Wire structures for the Places API v1.

type googlePlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string `json:"formattedAddress"`
	Location         struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	InternationalPhoneNumber string `json:"internationalPhoneNumber"`
	WebsiteURI               string `json:"websiteUri"`
	RegularOpeningHours      struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
}

type searchTextRequest struct {
	TextQuery    string        `json:"textQuery"`
	LocationBias *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type searchTextResponse struct {
	Places []googlePlace `json:"places"`
}

// FetchPlace looks a place up by its stable identifier. A 404 from the
// service means the identifier is stale, reported as a miss rather than
// an error.
func (c *GoogleClient) FetchPlace(ctx context.Context, placeID string) (*Place, error) {
	var result googlePlace
	found, err := c.doRequest(ctx, http.MethodGet, "/v1/places/"+placeID, detailsFieldMask, nil, &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	place := convertPlace(result)
	return &place, nil
}

// SearchText searches free text, optionally biased toward known
// coordinates within a 500 m circle.
func (c *GoogleClient) SearchText(ctx context.Context, query string, bias *LatLng) ([]Place, error) {
	body := searchTextRequest{TextQuery: query}
	if bias != nil {
		body.LocationBias = &locationBias{
			Circle: circle{Center: *bias, Radius: searchBiasRadius},
		}
	}

	var result searchTextResponse
	found, err := c.doRequest(ctx, http.MethodPost, "/v1/places:searchText", searchFieldMask, body, &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	places := make([]Place, 0, len(result.Places))
	for _, gp := range result.Places {
		places = append(places, convertPlace(gp))
	}
	return places, nil
}

// doRequest performs one call against the places service. The boolean
// result distinguishes "found nothing" (404) from a decoded payload.
func (c *GoogleClient) doRequest(ctx context.Context, method, path, fieldMask string, payload, result any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return false, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("places api error: %s - %s", resp.Status, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	return true, nil
}

func convertPlace(gp googlePlace) Place {
	return Place{
		ID:                  gp.ID,
		Name:                gp.DisplayName.Text,
		Address:             gp.FormattedAddress,
		Latitude:            gp.Location.Latitude,
		Longitude:           gp.Location.Longitude,
		Phone:               gp.InternationalPhoneNumber,
		Website:             gp.WebsiteURI,
		WeekdayDescriptions: gp.RegularOpeningHours.WeekdayDescriptions,
	}
}
