package httpapi

import (
	"encoding/json"
	"net/http"

	"waymark/shared/go/models"
)

// Place handlers
func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	var place models.Place
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if place.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "place name is required"})
		return
	}

	created, err := s.places.Create(r.Context(), token, &place)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	query := r.URL.Query()
	filter := models.PlaceFilter{
		Tag:   query.Get("tag"),
		Query: query.Get("q"),
	}

	places, err := s.places.List(r.Context(), token, filter)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Places []*models.Place `json:"places"`
	}{Places: places})
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	place, err := s.places.Get(r.Context(), token, r.PathValue("id"))
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, place)
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	var place models.Place
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := s.places.Update(r.Context(), token, r.PathValue("id"), &place)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	if err := s.places.Delete(r.Context(), token, r.PathValue("id")); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlaceVisibility(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	var body struct {
		IsPublic bool `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.places.SetVisibility(r.Context(), token, r.PathValue("id"), body.IsPublic); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
