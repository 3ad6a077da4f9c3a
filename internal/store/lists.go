package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"waymark/shared/go/models"
)

// ErrListNotFound indicates the list does not exist or is not visible
// to the caller.
var ErrListNotFound = errors.New("list not found")

// CreateList adds a new list for the session owner.
func (s *Store) CreateList(ctx context.Context, token string, list *models.List) (*models.List, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	list.Name = strings.TrimSpace(list.Name)
	if list.Name == "" {
		return nil, fmt.Errorf("list name is required")
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO lists (user_id, name, description, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, userID, list.Name, list.Description, list.IsPublic).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}

	list.UserID = userID
	return list, nil
}

// ListListsByUser returns all lists for the session owner.
func (s *Store) ListListsByUser(ctx context.Context, token string) ([]*models.List, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, is_public, created_at, updated_at
		FROM lists
		WHERE user_id = $1
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.IsPublic, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, &l)
	}
	return lists, rows.Err()
}

// GetList retrieves a list with its member places.
func (s *Store) GetList(ctx context.Context, id int64) (*models.ListWithPlaces, error) {
	var l models.ListWithPlaces
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, is_public, created_at, updated_at
		FROM lists
		WHERE id = $1
	`, id).Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.IsPublic, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select list: %w", err)
	}

	if l.Places, err = s.listPlaces(ctx, id); err != nil {
		return nil, err
	}

	return &l, nil
}

// UpdateList updates a list owned by the session owner.
func (s *Store) UpdateList(ctx context.Context, token string, id int64, list *models.List) (*models.List, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var l models.List
	err = s.db.QueryRowContext(ctx, `
		UPDATE lists
		SET name = $1, description = $2, is_public = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, name, description, is_public, created_at, updated_at
	`, list.Name, list.Description, list.IsPublic, id, userID).
		Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.IsPublic, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return &l, nil
}

// DeleteList removes a list owned by the session owner.
func (s *Store) DeleteList(ctx context.Context, token string, id int64) error {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if rows == 0 {
		return ErrListNotFound
	}

	return nil
}

// AddPlaceToList links a place into a list; both must belong to the
// session owner. Re-adding is a no-op.
func (s *Store) AddPlaceToList(ctx context.Context, token string, listID int64, placeID string) error {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO place_lists (place_id, list_id)
		SELECT p.id, l.id
		FROM places p, lists l
		WHERE p.id = $1 AND p.user_id = $3
		  AND l.id = $2 AND l.user_id = $3
		ON CONFLICT DO NOTHING
	`, placeID, listID, userID)
	if err != nil {
		return fmt.Errorf("add place to list: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add place to list: %w", err)
	}
	if rows == 0 {
		// Either an ownership mismatch or the membership already exists;
		// distinguish so a bad ID surfaces as 404.
		if _, err := s.ownedList(ctx, userID, listID); err != nil {
			return err
		}
	}

	return nil
}

// RemovePlaceFromList unlinks a place from a list owned by the session owner.
func (s *Store) RemovePlaceFromList(ctx context.Context, token string, listID int64, placeID string) error {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM place_lists
		WHERE place_id = $1 AND list_id = $2
	`, placeID, listID); err != nil {
		return fmt.Errorf("remove place from list: %w", err)
	}

	return nil
}

func (s *Store) ownedList(ctx context.Context, userID, listID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM lists WHERE id = $1 AND user_id = $2
	`, listID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrListNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup list: %w", err)
	}
	return id, nil
}

func (s *Store) listPlaces(ctx context.Context, listID int64) ([]*models.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.name, p.address, p.latitude, p.longitude,
		       p.notes, p.phone, p.website, p.hours, p.is_public, p.created_at, p.updated_at
		FROM places p
		JOIN place_lists pl ON pl.place_id = p.id
		WHERE pl.list_id = $1
		ORDER BY p.name ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("select list places: %w", err)
	}
	defer rows.Close()

	var places []*models.Place
	for rows.Next() {
		var p models.Place
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
			&p.Notes, &p.Phone, &p.Website, &p.Hours, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list place: %w", err)
		}
		places = append(places, &p)
	}
	return places, rows.Err()
}
