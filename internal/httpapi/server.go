package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"waymark/internal/app/imports"
	"waymark/internal/searchservice"
	"waymark/internal/store"
	"waymark/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*models.User, error)
}

// PlaceService coordinates saved-place operations.
type PlaceService interface {
	Create(ctx context.Context, token string, place *models.Place) (*models.Place, error)
	List(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error)
	Get(ctx context.Context, token, id string) (*models.Place, error)
	Update(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error)
	Delete(ctx context.Context, token string, id string) error
	SetVisibility(ctx context.Context, token string, id string, public bool) error
}

// TagService coordinates tag management.
type TagService interface {
	List(ctx context.Context, token string) ([]*models.TagWithCount, error)
	Rename(ctx context.Context, token string, id int64, name string) (*models.Tag, error)
	Delete(ctx context.Context, token string, id int64) error
}

// ListService coordinates place-list operations, including share links.
type ListService interface {
	Create(ctx context.Context, token string, list *models.List) (*models.List, error)
	List(ctx context.Context, token string) ([]*models.List, error)
	Get(ctx context.Context, token string, id int64) (*models.ListWithPlaces, error)
	Update(ctx context.Context, token string, id int64, list *models.List) (*models.List, error)
	Delete(ctx context.Context, token string, id int64) error
	AddPlace(ctx context.Context, token string, listID int64, placeID string) error
	RemovePlace(ctx context.Context, token string, listID int64, placeID string) error
	Share(ctx context.Context, token string, listID int64) (string, error)
	Redeem(ctx context.Context, shareToken string) (*models.ListWithPlaces, error)
}

// ImportService runs the place import pipeline.
type ImportService interface {
	Preview(ctx context.Context, token, filename string, data []byte) (*imports.Preview, error)
	Confirm(ctx context.Context, token string, records []models.CandidateRecord) (*models.ImportSummary, error)
	Import(ctx context.Context, token, filename string, data []byte) (*models.ImportSummary, error)
}

// SearchService provides combined search over owned places and external
// place suggestions.
type SearchService interface {
	Search(ctx context.Context, token, query string) (*searchservice.Results, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users   UserService
	places  PlaceService
	tags    TagService
	lists   ListService
	imports ImportService
	search  SearchService
}

// New configures a Server with the given service implementations.
func New(
	users UserService,
	places PlaceService,
	tags TagService,
	lists ListService,
	importSvc ImportService,
	search SearchService,
) *Server {
	return &Server{
		users:   users,
		places:  places,
		tags:    tags,
		lists:   lists,
		imports: importSvc,
		search:  search,
	}
}

// Routes exposes the HTTP handlers for account and map management.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/users/me", s.handleProfile)

	// Place routes
	mux.HandleFunc("POST /api/v1/places", s.handleCreatePlace)
	mux.HandleFunc("GET /api/v1/places", s.handleListPlaces)
	mux.HandleFunc("GET /api/v1/places/{id}", s.handleGetPlace)
	mux.HandleFunc("PUT /api/v1/places/{id}", s.handleUpdatePlace)
	mux.HandleFunc("DELETE /api/v1/places/{id}", s.handleDeletePlace)
	mux.HandleFunc("PUT /api/v1/places/{id}/visibility", s.handlePlaceVisibility)

	// Tag routes
	mux.HandleFunc("GET /api/v1/tags", s.handleListTags)
	mux.HandleFunc("PUT /api/v1/tags/{id}", s.handleRenameTag)
	mux.HandleFunc("DELETE /api/v1/tags/{id}", s.handleDeleteTag)

	// List routes
	mux.HandleFunc("POST /api/v1/lists", s.handleCreateList)
	mux.HandleFunc("GET /api/v1/lists", s.handleLists)
	mux.HandleFunc("GET /api/v1/lists/{id}", s.handleGetList)
	mux.HandleFunc("PUT /api/v1/lists/{id}", s.handleUpdateList)
	mux.HandleFunc("DELETE /api/v1/lists/{id}", s.handleDeleteList)
	mux.HandleFunc("POST /api/v1/lists/{id}/places/{placeID}", s.handleAddPlaceToList)
	mux.HandleFunc("DELETE /api/v1/lists/{id}/places/{placeID}", s.handleRemovePlaceFromList)
	mux.HandleFunc("POST /api/v1/lists/{id}/share", s.handleShareList)
	mux.HandleFunc("GET /api/v1/shared/lists/{token}", s.handleSharedList)

	// Import routes
	mux.HandleFunc("POST /api/v1/imports/preview", s.handleImportPreview)
	mux.HandleFunc("POST /api/v1/imports/confirm", s.handleImportConfirm)
	mux.HandleFunc("POST /api/v1/imports", s.handleImport)

	// Search route
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)

	return mux
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.users.Signup(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	if err := s.users.Logout(r.Context(), token); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	user, err := s.users.Profile(r.Context(), token)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrPlaceNotFound),
		errors.Is(err, store.ErrTagNotFound),
		errors.Is(err, store.ErrListNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func extractToken(r *http.Request) string {
	return parseBearerToken(r.Header.Get("Authorization"))
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
