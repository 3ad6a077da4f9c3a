package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"waymark/shared/go/models"
)

// ErrTagNotFound indicates the tag does not exist for this user.
var ErrTagNotFound = errors.New("tag not found")

// ListTagsByUser returns the session owner's tags with place counts.
func (s *Store) ListTagsByUser(ctx context.Context, token string) ([]*models.TagWithCount, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.name, COUNT(pt.place_id) AS place_count
		FROM tags t
		LEFT JOIN place_tags pt ON pt.tag_id = t.id
		WHERE t.user_id = $1
		GROUP BY t.id
		ORDER BY LOWER(t.name) ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.TagWithCount
	for rows.Next() {
		var t models.TagWithCount
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.PlaceCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

// TagByName finds a user's tag by case-insensitive name.
func (s *Store) TagByName(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name
		FROM tags
		WHERE user_id = $1 AND LOWER(name) = LOWER($2)
	`, userID, name).Scan(&t.ID, &t.UserID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select tag: %w", err)
	}
	return &t, nil
}

// CreateTag adds a tag for the user.
func (s *Store) CreateTag(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	t := models.Tag{UserID: userID, Name: name}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, userID, name).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &t, nil
}

// RenameTag changes a tag's name for the session owner.
func (s *Store) RenameTag(ctx context.Context, token string, id int64, name string) (*models.Tag, error) {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	var t models.Tag
	err = s.db.QueryRowContext(ctx, `
		UPDATE tags
		SET name = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name
	`, name, id, userID).Scan(&t.ID, &t.UserID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("tag %q already exists", name)
		}
		return nil, fmt.Errorf("rename tag: %w", err)
	}
	return &t, nil
}

// DeleteTag removes a tag; memberships cascade, places stay.
func (s *Store) DeleteTag(ctx context.Context, token string, id int64) error {
	userID, err := s.UserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if rows == 0 {
		return ErrTagNotFound
	}

	return nil
}
