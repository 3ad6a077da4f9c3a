// Package imports drives the place import pipeline: parsing uploaded
// exports, enriching incomplete records via the external places lookup,
// flagging duplicates, and committing previewed or one-shot batches.
package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"waymark/internal/importer"
	"waymark/internal/placesapi"
	"waymark/shared/go/logging"
	"waymark/shared/go/models"
)

// ErrBadFile signals an envelope-level parse failure: the upload is not a
// recognizable export at all. Row-level problems never surface here.
var ErrBadFile = errors.New("could not parse import file")

const (
	enrichmentFailed = "Could not find place via external lookup"

	// Stored opening hours are capped at the first three weekday lines
	// to keep the field readable in the UI.
	maxHoursLines = 3
)

// Store defines the persistence operations the orchestrator needs.
type Store interface {
	UserIDByToken(ctx context.Context, token string) (int64, error)
	HasDuplicatePlace(ctx context.Context, userID int64, lat, lng float64, name string) (bool, error)
	BeginImport(ctx context.Context) (Batch, error)
}

// Batch is one transactional import batch. Reads inside it observe rows
// written earlier in the same batch.
type Batch interface {
	HasDuplicate(ctx context.Context, userID int64, lat, lng float64, name string) (bool, error)
	InsertPlace(ctx context.Context, userID int64, place *models.Place) error
	ResolveTag(ctx context.Context, userID int64, name string) (*models.Tag, bool, error)
	AttachTag(ctx context.Context, placeID string, tagID int64) error
	Commit() error
	Rollback() error
}

// Service exposes the three import entry points.
type Service interface {
	Preview(ctx context.Context, token, filename string, data []byte) (*Preview, error)
	Confirm(ctx context.Context, token string, records []models.CandidateRecord) (*models.ImportSummary, error)
	Import(ctx context.Context, token, filename string, data []byte) (*models.ImportSummary, error)
}

// Preview is the annotated result of a read-only pipeline run.
type Preview struct {
	Places  []models.CandidateRecord `json:"places"`
	Summary models.PreviewSummary    `json:"summary"`
}

type service struct {
	store  Store
	places placesapi.Client
}

// New wires an import Service backed by the provided Store and lookup client.
func New(store Store, places placesapi.Client) Service {
	return &service{store: store, places: places}
}

// tagCache is batch-scoped; it keeps two records introducing the same tag
// name in one batch from creating it twice. Keys are lowercased names.
type tagCache map[string]*models.Tag

// Preview runs parse, enrichment, and duplicate detection without any
// writes. Duplicate flags in the result are advisory: Confirm re-checks.
func (s *service) Preview(ctx context.Context, token, filename string, data []byte) (*Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userID, err := s.store.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	records, format, err := importer.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFile, err)
	}

	summary := models.PreviewSummary{Total: len(records), Errors: []string{}}
	for i := range records {
		rec := &records[i]

		if !rec.Failed() && format == importer.FormatCSV {
			s.enrich(ctx, rec)
		}

		if rec.Failed() {
			summary.Failed++
			summary.Errors = append(summary.Errors, *rec.Error)
			continue
		}

		dup, err := s.store.HasDuplicatePlace(ctx, userID, rec.Latitude, rec.Longitude, rec.Name)
		if err != nil {
			return nil, err
		}
		if dup {
			rec.IsDuplicate = true
			summary.Duplicates++
		} else {
			summary.Successful++
		}
	}

	return &Preview{Places: records, Summary: summary}, nil
}

// Confirm persists a previously previewed (possibly edited) batch inside
// one transaction. Validation and duplicate skips are expected outcomes;
// any other persistence failure rolls the whole batch back.
func (s *service) Confirm(ctx context.Context, token string, records []models.CandidateRecord) (*models.ImportSummary, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userID, err := s.store.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	batch, err := s.store.BeginImport(ctx)
	if err != nil {
		return nil, err
	}
	defer batch.Rollback()

	summary := &models.ImportSummary{Errors: []string{}}
	cache := make(tagCache)

	for i := range records {
		rec := &records[i]

		if rec.Failed() {
			if strings.TrimSpace(rec.Name) == "" {
				continue
			}
			summary.PlacesSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", rec.Name, *rec.Error))
			continue
		}

		if strings.TrimSpace(rec.Name) == "" || (rec.Latitude == 0 && rec.Longitude == 0) {
			summary.PlacesSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Record %d: missing name or coordinates", i))
			continue
		}

		// The preview-time duplicate flag may be stale; check again
		// inside the transaction.
		dup, err := batch.HasDuplicate(ctx, userID, rec.Latitude, rec.Longitude, rec.Name)
		if err != nil {
			return nil, err
		}
		if dup {
			summary.PlacesSkipped++
			continue
		}

		if err := s.persistRecord(ctx, batch, userID, rec, cache, summary); err != nil {
			return nil, err
		}
	}

	if err := batch.Commit(); err != nil {
		return nil, err
	}

	logging.ImportBatch("confirm", summary.PlacesImported, summary.PlacesSkipped, len(summary.Errors), time.Since(start))
	return summary, nil
}

// Import is the one-shot path: parse, enrich, dedup-check, and persist in
// a single request with per-record fault isolation and one final commit.
func (s *service) Import(ctx context.Context, token, filename string, data []byte) (*models.ImportSummary, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userID, err := s.store.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	records, format, err := importer.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFile, err)
	}

	batch, err := s.store.BeginImport(ctx)
	if err != nil {
		return nil, err
	}
	defer batch.Rollback()

	summary := &models.ImportSummary{Errors: []string{}}
	cache := make(tagCache)

	for i := range records {
		rec := &records[i]

		if !rec.Failed() && format == importer.FormatCSV {
			s.enrich(ctx, rec)
		}

		if rec.Failed() {
			summary.PlacesSkipped++
			summary.Errors = append(summary.Errors, *rec.Error)
			continue
		}

		dup, err := batch.HasDuplicate(ctx, userID, rec.Latitude, rec.Longitude, rec.Name)
		if err != nil {
			return nil, err
		}
		if dup {
			summary.PlacesSkipped++
			continue
		}

		if err := s.persistRecord(ctx, batch, userID, rec, cache, summary); err != nil {
			return nil, err
		}
	}

	if err := batch.Commit(); err != nil {
		return nil, err
	}

	logging.ImportBatch(string(format), summary.PlacesImported, summary.PlacesSkipped, len(summary.Errors), time.Since(start))
	return summary, nil
}

// persistRecord writes one clean record and its tags inside the batch.
func (s *service) persistRecord(ctx context.Context, batch Batch, userID int64, rec *models.CandidateRecord, cache tagCache, summary *models.ImportSummary) error {
	place := &models.Place{
		Name:      rec.Name,
		Address:   rec.Address,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Notes:     rec.Notes,
		Phone:     rec.Phone,
		Website:   rec.Website,
		Hours:     rec.Hours,
	}

	if err := batch.InsertPlace(ctx, userID, place); err != nil {
		return err
	}

	for _, tagName := range rec.Tags {
		if strings.TrimSpace(tagName) == "" {
			continue
		}

		key := strings.ToLower(tagName)
		tag, ok := cache[key]
		if ok {
			summary.TagsMatched++
		} else {
			resolved, created, err := batch.ResolveTag(ctx, userID, tagName)
			if err != nil {
				return err
			}
			tag = resolved
			cache[key] = tag
			if created {
				summary.TagsCreated++
			} else {
				summary.TagsMatched++
			}
		}

		if err := batch.AttachTag(ctx, place.ID, tag.ID); err != nil {
			return err
		}
	}

	summary.PlacesImported++
	return nil
}

// enrich fills in missing fields on a tabular candidate via the external
// lookup: stable identifier first, free-text search second. Transport
// errors and non-2xx responses degrade to "not found" so one flaky call
// never aborts the batch.
func (s *service) enrich(ctx context.Context, rec *models.CandidateRecord) {
	if s.places == nil {
		rec.Fail(enrichmentFailed)
		return
	}

	if id, ok := placesapi.PlaceIDFromURL(rec.URL); ok {
		if place, err := s.places.FetchPlace(ctx, id); err == nil && place != nil {
			applyLookup(rec, *place)
			return
		}
	}

	bias, _ := placesapi.CoordsFromURL(rec.URL)
	if bias == nil && (rec.Latitude != 0 || rec.Longitude != 0) {
		bias = &placesapi.LatLng{Latitude: rec.Latitude, Longitude: rec.Longitude}
	}

	results, err := s.places.SearchText(ctx, rec.Name, bias)
	if err != nil || len(results) == 0 {
		rec.Fail(enrichmentFailed)
		return
	}

	applyLookup(rec, results[0])
}

func applyLookup(rec *models.CandidateRecord, place placesapi.Place) {
	if rec.Name == "" {
		rec.Name = place.Name
	}
	rec.Address = place.Address
	rec.Latitude = place.Latitude
	rec.Longitude = place.Longitude
	rec.Phone = place.Phone
	rec.Website = place.Website
	rec.Hours = hoursSummary(place.WeekdayDescriptions)
}

func hoursSummary(days []string) string {
	if len(days) > maxHoursLines {
		days = days[:maxHoursLines]
	}
	return strings.Join(days, "\n")
}
