package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"waymark/internal/app/lists"
	"waymark/shared/go/models"
)

// List handlers
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	var list models.List
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if list.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "list name is required"})
		return
	}

	created, err := s.lists.Create(r.Context(), token, &list)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	all, err := s.lists.List(r.Context(), token)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Lists []*models.List `json:"lists"`
	}{Lists: all})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list ID"})
		return
	}

	list, err := s.lists.Get(r.Context(), token, id)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list ID"})
		return
	}

	var list models.List
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := s.lists.Update(r.Context(), token, id, &list)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list ID"})
		return
	}

	if err := s.lists.Delete(r.Context(), token, id); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddPlaceToList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	listID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list ID"})
		return
	}

	if err := s.lists.AddPlace(r.Context(), token, listID, r.PathValue("placeID")); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemovePlaceFromList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	listID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list ID"})
		return
	}

	if err := s.lists.RemovePlace(r.Context(), token, listID, r.PathValue("placeID")); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShareList(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list ID"})
		return
	}

	shareToken, err := s.lists.Share(r.Context(), token, id)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ShareToken string `json:"share_token"`
	}{ShareToken: shareToken})
}

func (s *Server) handleSharedList(w http.ResponseWriter, r *http.Request) {
	list, err := s.lists.Redeem(r.Context(), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, lists.ErrInvalidShareToken) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "share link is invalid or expired"})
			return
		}
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, list)
}
