package placesapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/places/ChIJtest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Goog-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("X-Goog-FieldMask") == "" {
			t.Errorf("missing field mask header")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":               "ChIJtest",
			"displayName":      map[string]string{"text": "Cafe X"},
			"formattedAddress": "123 Main St",
			"location":         map[string]float64{"latitude": 40.75, "longitude": -73.99},
			"websiteUri":       "https://cafex.example.com",
			"regularOpeningHours": map[string]any{
				"weekdayDescriptions": []string{"Monday: 8 AM - 5 PM"},
			},
		})
	}))
	defer srv.Close()

	client := NewGoogleClient("test-key", srv.URL)

	place, err := client.FetchPlace(context.Background(), "ChIJtest")
	if err != nil {
		t.Fatalf("FetchPlace error: %v", err)
	}
	if place == nil {
		t.Fatal("expected a place")
	}
	if place.Name != "Cafe X" || place.Address != "123 Main St" {
		t.Fatalf("unexpected place: %#v", place)
	}
	if place.Latitude != 40.75 || place.Longitude != -73.99 {
		t.Fatalf("unexpected coordinates: %v, %v", place.Latitude, place.Longitude)
	}
	if len(place.WeekdayDescriptions) != 1 {
		t.Fatalf("unexpected hours: %#v", place.WeekdayDescriptions)
	}
}

func TestFetchPlaceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewGoogleClient("test-key", srv.URL)

	place, err := client.FetchPlace(context.Background(), "ChIJstale")
	if err != nil {
		t.Fatalf("expected stale ID to be a miss, got error: %v", err)
	}
	if place != nil {
		t.Fatalf("expected nil place, got %#v", place)
	}
}

func TestFetchPlaceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGoogleClient("test-key", srv.URL)

	if _, err := client.FetchPlace(context.Background(), "ChIJtest"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestSearchTextWithBias(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/places:searchText" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req searchTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.TextQuery != "Cafe X 123 Main St" {
			t.Errorf("unexpected query: %q", req.TextQuery)
		}
		if req.LocationBias == nil {
			t.Errorf("expected a location bias")
		} else {
			c := req.LocationBias.Circle
			if c.Center.Latitude != 40.75 || c.Center.Longitude != -73.99 || c.Radius != 500 {
				t.Errorf("unexpected bias circle: %#v", c)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"places": []map[string]any{
				{
					"id":               "ChIJone",
					"displayName":      map[string]string{"text": "Cafe X"},
					"formattedAddress": "123 Main St",
					"location":         map[string]float64{"latitude": 40.75, "longitude": -73.99},
				},
				{
					"id":          "ChIJtwo",
					"displayName": map[string]string{"text": "Cafe X Annex"},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewGoogleClient("test-key", srv.URL)

	places, err := client.SearchText(context.Background(), "Cafe X 123 Main St", &LatLng{Latitude: 40.75, Longitude: -73.99})
	if err != nil {
		t.Fatalf("SearchText error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0].ID != "ChIJone" {
		t.Fatalf("expected ranking order preserved, got %#v", places)
	}
}

func TestSearchTextNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewGoogleClient("test-key", srv.URL)

	places, err := client.SearchText(context.Background(), "nowhere", nil)
	if err != nil {
		t.Fatalf("SearchText error: %v", err)
	}
	if len(places) != 0 {
		t.Fatalf("expected no places, got %d", len(places))
	}
}
