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

// ErrPlaceNotFound indicates the place does not exist or is not visible
// to the caller.
var ErrPlaceNotFound = errors.New("place not found")

// duplicateTolerance is the coordinate window, in degrees, inside which
// two places count as the same location (roughly 10 meters).
const duplicateTolerance = 0.0001

// CreatePlace adds a new place for the session owner.
func (s *Store) CreatePlace(ctx context.Context, token string, place *models.Place) (*models.Place, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	place.Name = strings.TrimSpace(place.Name)
	if place.Name == "" {
		return nil, fmt.Errorf("place name is required")
	}

	place.ID = uuid.NewString()
	place.UserID = userID

	query := `
		INSERT INTO places (id, user_id, name, address, latitude, longitude, notes, phone, website, hours, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		place.ID, userID, place.Name, place.Address, place.Latitude, place.Longitude,
		place.Notes, place.Phone, place.Website, place.Hours, place.IsPublic,
	).Scan(&place.CreatedAt, &place.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert place: %w", err)
	}

	for _, tagName := range place.Tags {
		tagName = strings.TrimSpace(tagName)
		if tagName == "" {
			continue
		}

		tag, err := s.TagByName(ctx, userID, tagName)
		if errors.Is(err, ErrTagNotFound) {
			tag, err = s.CreateTag(ctx, userID, tagName)
		}
		if err != nil {
			return nil, err
		}

		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO place_tags (place_id, tag_id)
			VALUES ($1, $2)
		`, place.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("attach tag: %w", err)
		}
	}

	return place, nil
}

// ListPlacesByUser returns the session owner's places, optionally narrowed
// by a tag or a free-text filter on name and address.
func (s *Store) ListPlacesByUser(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT DISTINCT p.id, p.user_id, p.name, p.address, p.latitude, p.longitude,
		       p.notes, p.phone, p.website, p.hours, p.is_public, p.created_at, p.updated_at
		FROM places p
	`
	args := []any{userID}
	var conditions []string

	if filter.Tag != "" {
		query += `
		JOIN place_tags pt ON pt.place_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		`
		args = append(args, filter.Tag)
		conditions = append(conditions, fmt.Sprintf("LOWER(t.name) = LOWER($%d)", len(args)))
	}

	conditions = append([]string{"p.user_id = $1"}, conditions...)

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.address ILIKE $%d)", len(args), len(args)))
	}

	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY p.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select places: %w", err)
	}
	defer rows.Close()

	var places []*models.Place
	for rows.Next() {
		var p models.Place
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
			&p.Notes, &p.Phone, &p.Website, &p.Hours, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}

	for _, p := range places {
		if p.Tags, err = s.placeTagNames(ctx, p.ID); err != nil {
			return nil, err
		}
	}

	return places, nil
}

// GetPlace retrieves a single place by ID.
func (s *Store) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	var p models.Place
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, address, latitude, longitude, notes, phone, website, hours, is_public, created_at, updated_at
		FROM places
		WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
		&p.Notes, &p.Phone, &p.Website, &p.Hours, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select place: %w", err)
	}

	if p.Tags, err = s.placeTagNames(ctx, p.ID); err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdatePlace updates a place owned by the session owner.
func (s *Store) UpdatePlace(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE places
		SET name = $1, address = $2, latitude = $3, longitude = $4,
		    notes = $5, phone = $6, website = $7, hours = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $9 AND user_id = $10
		RETURNING id, user_id, name, address, latitude, longitude, notes, phone, website, hours, is_public, created_at, updated_at
	`

	var p models.Place
	err = s.db.QueryRowContext(ctx, query,
		place.Name, place.Address, place.Latitude, place.Longitude,
		place.Notes, place.Phone, place.Website, place.Hours, id, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
		&p.Notes, &p.Phone, &p.Website, &p.Hours, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update place: %w", err)
	}

	return &p, nil
}

// DeletePlace removes a place owned by the session owner.
func (s *Store) DeletePlace(ctx context.Context, token string, id string) error {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM places WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if rows == 0 {
		return ErrPlaceNotFound
	}

	return nil
}

// SetPlaceVisibility toggles whether a place appears on the public map.
func (s *Store) SetPlaceVisibility(ctx context.Context, token string, id string, public bool) error {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE places
		SET is_public = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND user_id = $3
	`, public, id, userID)
	if err != nil {
		return fmt.Errorf("update place visibility: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update place visibility: %w", err)
	}
	if rows == 0 {
		return ErrPlaceNotFound
	}

	return nil
}

// HasDuplicatePlace reports whether the user already owns a place whose
// coordinates fall within the duplicate tolerance of (lat, lng) and whose
// name matches case-insensitively. Both conditions must hold: two
// businesses can share a building, and chains recur across town.
func (s *Store) HasDuplicatePlace(ctx context.Context, userID int64, lat, lng float64, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
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

func (s *Store) placeTagNames(ctx context.Context, placeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM tags t
		JOIN place_tags pt ON pt.tag_id = t.id
		WHERE pt.place_id = $1
		ORDER BY t.name ASC
	`, placeID)
	if err != nil {
		return nil, fmt.Errorf("select place tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan place tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
