package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"waymark/shared/go/models"
)

// ImportTx wraps a single batch-wide transaction for the import pipeline.
// Duplicate checks and tag lookups inside it see rows inserted earlier in
// the same batch, so in-batch duplicates are caught without committing.
type ImportTx struct {
	tx *sql.Tx
}

// BeginImport opens the transaction for one import batch.
func (s *Store) BeginImport(ctx context.Context) (*ImportTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	return &ImportTx{tx: tx}, nil
}

// HasDuplicate mirrors Store.HasDuplicatePlace inside the batch transaction.
func (t *ImportTx) HasDuplicate(ctx context.Context, userID int64, lat, lng float64, name string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM places
			WHERE user_id = $1
			  AND latitude BETWEEN $2 AND $3
			  AND longitude BETWEEN $4 AND $5
			  AND LOWER(name) = LOWER($6)
		)
	`, userID,
		lat-duplicateTolerance, lat+duplicateTolerance,
		lng-duplicateTolerance, lng+duplicateTolerance,
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate place: %w", err)
	}
	return exists, nil
}

// InsertPlace writes one place inside the batch and fills in its ID.
func (t *ImportTx) InsertPlace(ctx context.Context, userID int64, place *models.Place) error {
	place.ID = uuid.NewString()
	place.UserID = userID

	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO places (id, user_id, name, address, latitude, longitude, notes, phone, website, hours, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, place.ID, userID, place.Name, place.Address, place.Latitude, place.Longitude,
		place.Notes, place.Phone, place.Website, place.Hours, place.IsPublic,
	).Scan(&place.CreatedAt, &place.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert place: %w", err)
	}

	return nil
}

// ResolveTag finds the user's tag by case-insensitive name, creating it on
// first use. The second return value reports whether a tag was created.
func (t *ImportTx) ResolveTag(ctx context.Context, userID int64, name string) (*models.Tag, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("tag name is required")
	}

	var tag models.Tag
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, user_id, name
		FROM tags
		WHERE user_id = $1 AND LOWER(name) = LOWER($2)
	`, userID, name).Scan(&tag.ID, &tag.UserID, &tag.Name)
	if err == nil {
		return &tag, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("select tag: %w", err)
	}

	tag = models.Tag{UserID: userID, Name: name}
	if err := t.tx.QueryRowContext(ctx, `
		INSERT INTO tags (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, userID, name).Scan(&tag.ID); err != nil {
		return nil, false, fmt.Errorf("insert tag: %w", err)
	}

	return &tag, true, nil
}

// AttachTag links a tag to a place. Duplicate attachments within one
// record collapse here.
func (t *ImportTx) AttachTag(ctx context.Context, placeID string, tagID int64) error {
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO place_tags (place_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, placeID, tagID); err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// Commit finalizes the batch.
func (t *ImportTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

// Rollback abandons the batch. Safe to call after Commit.
func (t *ImportTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback import tx: %w", err)
	}
	return nil
}
