package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"waymark/shared/go/models"
)

func TestImportTxHasDuplicate(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	lat, lng := 40.75, -73.99
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(`)).
		WithArgs(int64(42), lat-duplicateTolerance, lat+duplicateTolerance,
			lng-duplicateTolerance, lng+duplicateTolerance, "Cafe X").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	tx, err := s.BeginImport(context.Background())
	if err != nil {
		t.Fatalf("BeginImport error: %v", err)
	}

	dup, err := tx.HasDuplicate(context.Background(), 42, 40.75, -73.99, "Cafe X")
	if err != nil {
		t.Fatalf("HasDuplicate error: %v", err)
	}
	if dup {
		t.Fatal("expected no duplicate")
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestImportTxInsertPlaceAndTags(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO places (id, user_id, name, address, latitude, longitude, notes, phone, website, hours, is_public)`)).
		WithArgs(sqlmock.AnyArg(), int64(42), "Cafe X", "123 Main St", 40.75, -73.99, "", "", "", "", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	// First tag does not exist yet, so it is created.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name`)).
		WithArgs(int64(42), "coffee").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tags (user_id, name)`)).
		WithArgs(int64(42), "coffee").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO place_tags (place_id, tag_id)`)).
		WithArgs(sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	tx, err := s.BeginImport(context.Background())
	if err != nil {
		t.Fatalf("BeginImport error: %v", err)
	}

	place := &models.Place{Name: "Cafe X", Address: "123 Main St", Latitude: 40.75, Longitude: -73.99}
	if err := tx.InsertPlace(context.Background(), 42, place); err != nil {
		t.Fatalf("InsertPlace error: %v", err)
	}
	if place.ID == "" {
		t.Fatal("expected generated place ID")
	}

	tag, created, err := tx.ResolveTag(context.Background(), 42, "coffee")
	if err != nil {
		t.Fatalf("ResolveTag error: %v", err)
	}
	if !created {
		t.Fatal("expected tag to be created")
	}
	if tag.ID != 5 {
		t.Fatalf("expected tag ID 5, got %d", tag.ID)
	}

	if err := tx.AttachTag(context.Background(), place.ID, tag.ID); err != nil {
		t.Fatalf("AttachTag error: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestImportTxResolveTagExisting(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name`)).
		WithArgs(int64(42), "Coffee").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(int64(5), int64(42), "coffee"))
	mock.ExpectRollback()

	tx, err := s.BeginImport(context.Background())
	if err != nil {
		t.Fatalf("BeginImport error: %v", err)
	}

	tag, created, err := tx.ResolveTag(context.Background(), 42, "Coffee")
	if err != nil {
		t.Fatalf("ResolveTag error: %v", err)
	}
	if created {
		t.Fatal("expected existing tag to be reused")
	}
	if tag.Name != "coffee" {
		t.Fatalf("expected stored casing 'coffee', got %q", tag.Name)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback error: %v", err)
	}
}

func TestImportTxRollbackAfterCommit(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := s.BeginImport(context.Background())
	if err != nil {
		t.Fatalf("BeginImport error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit error: %v", err)
	}

	// Deferred rollbacks after a successful commit must be harmless.
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback after commit: %v", err)
	}
}
