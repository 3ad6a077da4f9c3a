package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"waymark/internal/app/imports"
	"waymark/internal/app/lists"
	"waymark/internal/searchservice"
	"waymark/internal/store"
	"waymark/shared/go/models"
)

type stubUserService struct{}

func (stubUserService) Signup(context.Context, string, string) error {
	return nil
}

func (stubUserService) Authenticate(context.Context, string, string) (string, error) {
	return "", nil
}

func (stubUserService) Logout(context.Context, string) error {
	return nil
}

func (stubUserService) Profile(context.Context, string) (*models.User, error) {
	return &models.User{ID: 1, Username: "demo"}, nil
}

type stubPlaceService struct {
	listResponse []*models.Place
	listErr      error

	createdPlace *models.Place
	createErr    error

	singlePlace *models.Place
	singleErr   error

	deleteErr error

	lastToken  string
	lastFilter models.PlaceFilter
	lastID     string
}

func (s *stubPlaceService) Create(ctx context.Context, token string, place *models.Place) (*models.Place, error) {
	s.lastToken = token
	s.createdPlace = place
	if s.createErr != nil {
		return nil, s.createErr
	}
	return place, nil
}

func (s *stubPlaceService) List(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error) {
	s.lastToken = token
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResponse, nil
}

func (s *stubPlaceService) Get(ctx context.Context, token, id string) (*models.Place, error) {
	s.lastToken = token
	s.lastID = id
	if s.singleErr != nil {
		return nil, s.singleErr
	}
	return s.singlePlace, nil
}

func (s *stubPlaceService) Update(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error) {
	s.lastToken = token
	s.lastID = id
	return place, nil
}

func (s *stubPlaceService) Delete(ctx context.Context, token string, id string) error {
	s.lastToken = token
	s.lastID = id
	return s.deleteErr
}

func (s *stubPlaceService) SetVisibility(ctx context.Context, token string, id string, public bool) error {
	s.lastToken = token
	s.lastID = id
	return nil
}

type stubTagService struct {
	tagsResponse []*models.TagWithCount
	tagsErr      error

	renameErr error
	deleteErr error

	lastToken string
	lastID    int64
	lastName  string
}

func (s *stubTagService) List(ctx context.Context, token string) ([]*models.TagWithCount, error) {
	s.lastToken = token
	if s.tagsErr != nil {
		return nil, s.tagsErr
	}
	return s.tagsResponse, nil
}

func (s *stubTagService) Rename(ctx context.Context, token string, id int64, name string) (*models.Tag, error) {
	s.lastToken = token
	s.lastID = id
	s.lastName = name
	if s.renameErr != nil {
		return nil, s.renameErr
	}
	return &models.Tag{ID: id, Name: name}, nil
}

func (s *stubTagService) Delete(ctx context.Context, token string, id int64) error {
	s.lastToken = token
	s.lastID = id
	return s.deleteErr
}

type stubListService struct {
	sharedList *models.ListWithPlaces
	redeemErr  error

	shareToken string
	shareErr   error

	lastToken      string
	lastListID     int64
	lastPlaceID    string
	lastShareToken string
}

func (s *stubListService) Create(ctx context.Context, token string, list *models.List) (*models.List, error) {
	s.lastToken = token
	return list, nil
}

func (s *stubListService) List(ctx context.Context, token string) ([]*models.List, error) {
	s.lastToken = token
	return nil, nil
}

func (s *stubListService) Get(ctx context.Context, token string, id int64) (*models.ListWithPlaces, error) {
	s.lastToken = token
	s.lastListID = id
	return &models.ListWithPlaces{}, nil
}

func (s *stubListService) Update(ctx context.Context, token string, id int64, list *models.List) (*models.List, error) {
	s.lastToken = token
	s.lastListID = id
	return list, nil
}

func (s *stubListService) Delete(ctx context.Context, token string, id int64) error {
	s.lastToken = token
	s.lastListID = id
	return nil
}

func (s *stubListService) AddPlace(ctx context.Context, token string, listID int64, placeID string) error {
	s.lastToken = token
	s.lastListID = listID
	s.lastPlaceID = placeID
	return nil
}

func (s *stubListService) RemovePlace(ctx context.Context, token string, listID int64, placeID string) error {
	s.lastToken = token
	s.lastListID = listID
	s.lastPlaceID = placeID
	return nil
}

func (s *stubListService) Share(ctx context.Context, token string, listID int64) (string, error) {
	s.lastToken = token
	s.lastListID = listID
	if s.shareErr != nil {
		return "", s.shareErr
	}
	return s.shareToken, nil
}

func (s *stubListService) Redeem(ctx context.Context, shareToken string) (*models.ListWithPlaces, error) {
	s.lastShareToken = shareToken
	if s.redeemErr != nil {
		return nil, s.redeemErr
	}
	return s.sharedList, nil
}

type stubImportService struct {
	previewResponse *imports.Preview
	previewErr      error

	summaryResponse *models.ImportSummary
	confirmErr      error
	importErr       error

	lastToken    string
	lastFilename string
	lastData     []byte
	lastRecords  []models.CandidateRecord
}

func (s *stubImportService) Preview(ctx context.Context, token, filename string, data []byte) (*imports.Preview, error) {
	s.lastToken = token
	s.lastFilename = filename
	s.lastData = data
	if s.previewErr != nil {
		return nil, s.previewErr
	}
	return s.previewResponse, nil
}

func (s *stubImportService) Confirm(ctx context.Context, token string, records []models.CandidateRecord) (*models.ImportSummary, error) {
	s.lastToken = token
	s.lastRecords = records
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return s.summaryResponse, nil
}

func (s *stubImportService) Import(ctx context.Context, token, filename string, data []byte) (*models.ImportSummary, error) {
	s.lastToken = token
	s.lastFilename = filename
	s.lastData = data
	if s.importErr != nil {
		return nil, s.importErr
	}
	return s.summaryResponse, nil
}

type noopSearchService struct{}

func (noopSearchService) Search(context.Context, string, string) (*searchservice.Results, error) {
	return &searchservice.Results{}, nil
}

func newTestServer(t *testing.T, places *stubPlaceService, tags *stubTagService, listSvc *stubListService, importSvc *stubImportService) *Server {
	t.Helper()
	if places == nil {
		places = &stubPlaceService{}
	}
	if tags == nil {
		tags = &stubTagService{}
	}
	if listSvc == nil {
		listSvc = &stubListService{}
	}
	if importSvc == nil {
		importSvc = &stubImportService{}
	}
	return New(
		stubUserService{},
		places,
		tags,
		listSvc,
		importSvc,
		noopSearchService{},
	)
}

func TestHandleListPlacesSuccess(t *testing.T) {
	placeStub := &stubPlaceService{
		listResponse: []*models.Place{
			{ID: "abc", Name: "Cafe X", Latitude: 40.75, Longitude: -73.99},
		},
	}
	server := newTestServer(t, placeStub, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/places?tag=coffee&q=cafe", nil)
	req.Header.Set("Authorization", "Bearer token-123")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var payload struct {
		Places []*models.Place `json:"places"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Places) != 1 || payload.Places[0].ID != "abc" {
		t.Fatalf("unexpected places payload: %#v", payload.Places)
	}
	if placeStub.lastToken != "token-123" {
		t.Fatalf("expected token 'token-123', got %q", placeStub.lastToken)
	}
	if placeStub.lastFilter.Tag != "coffee" || placeStub.lastFilter.Query != "cafe" {
		t.Fatalf("unexpected filter: %#v", placeStub.lastFilter)
	}
}

func TestHandleListPlacesUnauthorized(t *testing.T) {
	placeStub := &stubPlaceService{
		listErr: store.ErrUnauthorized,
	}

	server := newTestServer(t, placeStub, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/places", nil)
	req.Header.Set("Authorization", "Bearer bad")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleCreatePlaceSuccess(t *testing.T) {
	placeStub := &stubPlaceService{}
	server := newTestServer(t, placeStub, nil, nil, nil)

	body := models.Place{Name: "Cafe X", Latitude: 40.75, Longitude: -73.99}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/places", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if placeStub.lastToken != "token" {
		t.Fatalf("expected token 'token', got %q", placeStub.lastToken)
	}
	if placeStub.createdPlace == nil || placeStub.createdPlace.Name != "Cafe X" {
		t.Fatalf("unexpected created place: %#v", placeStub.createdPlace)
	}
}

func TestHandleCreatePlaceMissingName(t *testing.T) {
	server := newTestServer(t, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/places", bytes.NewReader([]byte(`{"latitude":1}`)))
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleCreatePlaceMissingToken(t *testing.T) {
	server := newTestServer(t, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/places", bytes.NewReader([]byte(`{}`)))

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleGetPlaceNotFound(t *testing.T) {
	placeStub := &stubPlaceService{singleErr: store.ErrPlaceNotFound}
	server := newTestServer(t, placeStub, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/places/missing", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if placeStub.lastID != "missing" {
		t.Fatalf("expected id 'missing', got %q", placeStub.lastID)
	}
}

func TestHandleGetPlaceRequiresToken(t *testing.T) {
	placeStub := &stubPlaceService{
		singlePlace: &models.Place{ID: "p1", Name: "Hidden Spot"},
	}
	server := newTestServer(t, placeStub, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/places/p1", nil)

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if placeStub.lastID != "" {
		t.Fatalf("expected service untouched, got id %q", placeStub.lastID)
	}
}

func TestHandleRenameTagErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"notfound", store.ErrTagNotFound, http.StatusNotFound},
		{"unauthorized", store.ErrUnauthorized, http.StatusUnauthorized},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tagStub := &stubTagService{renameErr: tc.err}
			server := newTestServer(t, nil, tagStub, nil, nil)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/tags/5", bytes.NewReader([]byte(`{"name":"coffee"}`)))
			req.Header.Set("Authorization", "Bearer token")

			rr := httptest.NewRecorder()
			server.Routes().ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleAddPlaceToList(t *testing.T) {
	listStub := &stubListService{}
	server := newTestServer(t, nil, nil, listStub, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lists/7/places/place-uuid", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if listStub.lastListID != 7 || listStub.lastPlaceID != "place-uuid" {
		t.Fatalf("unexpected list call: listID=%d placeID=%q", listStub.lastListID, listStub.lastPlaceID)
	}
}

func TestHandleShareList(t *testing.T) {
	listStub := &stubListService{shareToken: "signed-token"}
	server := newTestServer(t, nil, nil, listStub, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lists/3/share", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var payload struct {
		ShareToken string `json:"share_token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ShareToken != "signed-token" {
		t.Fatalf("expected share token 'signed-token', got %q", payload.ShareToken)
	}
}

func TestHandleSharedListInvalidToken(t *testing.T) {
	listStub := &stubListService{redeemErr: lists.ErrInvalidShareToken}
	server := newTestServer(t, nil, nil, listStub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shared/lists/garbage", nil)

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if listStub.lastShareToken != "garbage" {
		t.Fatalf("expected share token 'garbage', got %q", listStub.lastShareToken)
	}
}

func multipartBody(t *testing.T, filename string, contents []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(contents); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestHandleImportPreview(t *testing.T) {
	importStub := &stubImportService{
		previewResponse: &imports.Preview{
			Places: []models.CandidateRecord{{Name: "Cafe X"}},
			Summary: models.PreviewSummary{
				Total:      1,
				Successful: 1,
			},
		},
	}
	server := newTestServer(t, nil, nil, nil, importStub)

	body, contentType := multipartBody(t, "places.csv", []byte("Title,URL\nCafe X,https://maps.example.com/?q=x\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/preview", body)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if importStub.lastFilename != "places.csv" {
		t.Fatalf("expected filename 'places.csv', got %q", importStub.lastFilename)
	}
	if len(importStub.lastData) == 0 {
		t.Fatal("expected file contents to reach the service")
	}

	var payload imports.Preview
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Summary.Total != 1 || len(payload.Places) != 1 {
		t.Fatalf("unexpected preview payload: %#v", payload)
	}
}

func TestHandleImportPreviewBadFile(t *testing.T) {
	importStub := &stubImportService{previewErr: imports.ErrBadFile}
	server := newTestServer(t, nil, nil, nil, importStub)

	body, contentType := multipartBody(t, "notes.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/preview", body)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleImportPreviewMissingFile(t *testing.T) {
	server := newTestServer(t, nil, nil, nil, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/preview", &buf)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleImportConfirm(t *testing.T) {
	importStub := &stubImportService{
		summaryResponse: &models.ImportSummary{PlacesImported: 2, TagsCreated: 1},
	}
	server := newTestServer(t, nil, nil, nil, importStub)

	body := struct {
		Places []models.CandidateRecord `json:"places"`
	}{
		Places: []models.CandidateRecord{
			{Name: "Cafe X", Latitude: 40.75, Longitude: -73.99},
			{Name: "Bar Y", Latitude: 40.76, Longitude: -73.98},
		},
	}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/confirm", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if len(importStub.lastRecords) != 2 {
		t.Fatalf("expected 2 records, got %d", len(importStub.lastRecords))
	}

	var payload struct {
		Message string               `json:"message"`
		Summary models.ImportSummary `json:"summary"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message == "" {
		t.Fatal("expected a message field")
	}
	if payload.Summary.PlacesImported != 2 || payload.Summary.TagsCreated != 1 {
		t.Fatalf("unexpected summary: %#v", payload.Summary)
	}
}

func TestHandleImportOneShot(t *testing.T) {
	importStub := &stubImportService{
		summaryResponse: &models.ImportSummary{PlacesImported: 1},
	}
	server := newTestServer(t, nil, nil, nil, importStub)

	body, contentType := multipartBody(t, "export.geojson", []byte(`{"type":"FeatureCollection","features":[]}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if importStub.lastFilename != "export.geojson" {
		t.Fatalf("expected filename 'export.geojson', got %q", importStub.lastFilename)
	}

	var payload struct {
		Message string               `json:"message"`
		Summary models.ImportSummary `json:"summary"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message == "" {
		t.Fatal("expected a message field")
	}
	if payload.Summary.PlacesImported != 1 {
		t.Fatalf("unexpected summary: %#v", payload.Summary)
	}
}

func TestHandleSearchMissingQuery(t *testing.T) {
	server := newTestServer(t, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
