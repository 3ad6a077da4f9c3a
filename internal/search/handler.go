package search

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Handler responds to public search requests backed by the Store.
type Handler struct {
	store Store
}

// NewHandler builds a handler using the provided store implementation.
func NewHandler(store Store) http.Handler {
	return &Handler{store: store}
}

// Response models the payload returned by the search handler.
type Response struct {
	Sections []Section `json:"sections"`
}

// Section groups related search results.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item represents a single search result entry.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
	Href        string `json:"href,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, Response{Sections: []Section{}})
		return
	}

	limit := 10
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.store.Search(r.Context(), query, limit)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(results))
}

func buildResponse(results Results) Response {
	var sections []Section

	if len(results.Places) > 0 {
		items := make([]Item, 0, len(results.Places))
		for _, place := range results.Places {
			items = append(items, Item{
				ID:          place.ID,
				Title:       place.Name,
				Subtitle:    place.Address,
				Description: place.Notes,
				Href:        "/api/v1/places/" + place.ID,
			})
		}
		sections = append(sections, Section{Name: "places", Items: items})
	}

	if len(results.Lists) > 0 {
		items := make([]Item, 0, len(results.Lists))
		for _, list := range results.Lists {
			items = append(items, Item{
				ID:          strconv.FormatInt(list.ID, 10),
				Title:       list.Name,
				Subtitle:    pluralize(list.PlaceCount, "place"),
				Description: list.Description,
				Href:        "/api/v1/lists/" + strconv.FormatInt(list.ID, 10),
			})
		}
		sections = append(sections, Section{Name: "lists", Items: items})
	}

	if len(results.Tags) > 0 {
		items := make([]Item, 0, len(results.Tags))
		for _, tag := range results.Tags {
			items = append(items, Item{
				ID:       makeTagID(tag.Name),
				Title:    tag.Name,
				Subtitle: pluralize(tag.PlaceCount, "place"),
				Href:     "/api/v1/places?tag=" + url.QueryEscape(tag.Name),
			})
		}
		sections = append(sections, Section{Name: "tags", Items: items})
	}

	return Response{Sections: sections}
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pluralize(count int, singular string) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 " + singular
	default:
		return strconv.Itoa(count) + " " + singular + "s"
	}
}
