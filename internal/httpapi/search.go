package httpapi

import (
	"net/http"
	"strings"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing q parameter"})
		return
	}

	results, err := s.search.Search(r.Context(), token, query)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, results)
}
