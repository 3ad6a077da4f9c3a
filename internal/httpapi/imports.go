package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"waymark/internal/app/imports"
	"waymark/shared/go/models"
)

// maxImportSize caps uploaded import files at 10 MB.
const maxImportSize = 10 << 20

// importResponse is the envelope for committed import batches.
type importResponse struct {
	Message string                `json:"message"`
	Summary *models.ImportSummary `json:"summary"`
}

// Import handlers
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	filename, data, ok := readImportFile(w, r)
	if !ok {
		return
	}

	preview, err := s.imports.Preview(r.Context(), token, filename, data)
	if err != nil {
		writeJSON(w, importStatus(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleImportConfirm(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	var body struct {
		Places []models.CandidateRecord `json:"places"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportSize)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	summary, err := s.imports.Confirm(r.Context(), token, body.Places)
	if err != nil {
		writeJSON(w, importStatus(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, importResponse{Message: "Import completed", Summary: summary})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	filename, data, ok := readImportFile(w, r)
	if !ok {
		return
	}

	summary, err := s.imports.Import(r.Context(), token, filename, data)
	if err != nil {
		writeJSON(w, importStatus(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, importResponse{Message: "Import completed", Summary: summary})
}

// readImportFile pulls the uploaded file out of the multipart form. On
// failure it writes the error response itself and reports ok=false.
func readImportFile(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file upload"})
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read file upload"})
		return "", nil, false
	}

	return header.Filename, data, true
}

func importStatus(err error) int {
	if errors.Is(err, imports.ErrBadFile) {
		return http.StatusBadRequest
	}
	return statusForError(err)
}
