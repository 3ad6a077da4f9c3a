package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Store defines the persistence operations required by the search handler.
type Store interface {
	Search(ctx context.Context, query string, limit int) (Results, error)
}

// Results captures the different result buckets surfaced by the handler.
type Results struct {
	Places []PlaceResult
	Lists  []ListResult
	Tags   []TagResult
}

// PlaceResult summarises a public place match.
type PlaceResult struct {
	ID      string
	Name    string
	Address string
	Notes   string
}

// ListResult summarises a public list match.
type ListResult struct {
	ID          int64
	Name        string
	Description string
	PlaceCount  int
}

// TagResult summarises a tag attached to at least one public place.
type TagResult struct {
	Name       string
	PlaceCount int
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Store backed by the supplied database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Search performs a fan-out query across public places, lists, and tags.
func (s *PGStore) Search(ctx context.Context, query string, limit int) (Results, error) {
	if limit <= 0 {
		limit = 10
	}
	like := "%" + query + "%"

	places, err := s.fetchPlaces(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	lists, err := s.fetchLists(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	tags, err := s.fetchTags(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	return Results{
		Places: places,
		Lists:  lists,
		Tags:   tags,
	}, nil
}

func (s *PGStore) fetchPlaces(ctx context.Context, like string, limit int) ([]PlaceResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(address, ''), COALESCE(notes, '')
		FROM places
		WHERE is_public = TRUE AND (name ILIKE $1 OR address ILIKE $1)
		ORDER BY name ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}
	defer rows.Close()

	results := make([]PlaceResult, 0)
	for rows.Next() {
		var (
			id      string
			name    string
			address string
			notes   string
		)
		if err := rows.Scan(&id, &name, &address, &notes); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}

		results = append(results, PlaceResult{
			ID:      id,
			Name:    name,
			Address: address,
			Notes:   notes,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}

	return results, nil
}

func (s *PGStore) fetchLists(ctx context.Context, like string, limit int) ([]ListResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name, COALESCE(l.description, ''), COUNT(pl.place_id) AS place_count
		FROM lists l
		LEFT JOIN place_lists pl ON pl.list_id = l.id
		WHERE l.is_public = TRUE AND (l.name ILIKE $1 OR l.description ILIKE $1)
		GROUP BY l.id, l.name, l.description
		ORDER BY place_count DESC, l.name ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search lists: %w", err)
	}
	defer rows.Close()

	results := make([]ListResult, 0)
	for rows.Next() {
		var (
			id          int64
			name        string
			description string
			count       int
		)
		if err := rows.Scan(&id, &name, &description, &count); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}

		results = append(results, ListResult{
			ID:          id,
			Name:        name,
			Description: description,
			PlaceCount:  count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}

	return results, nil
}

func (s *PGStore) fetchTags(ctx context.Context, like string, limit int) ([]TagResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, COUNT(pt.place_id) AS place_count
		FROM tags t
		JOIN place_tags pt ON pt.tag_id = t.id
		JOIN places p ON p.id = pt.place_id
		WHERE p.is_public = TRUE AND t.name ILIKE $1
		GROUP BY t.name
		ORDER BY place_count DESC, t.name ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	defer rows.Close()

	results := make([]TagResult, 0)
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}

		results = append(results, TagResult{
			Name:       name,
			PlaceCount: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return results, nil
}

func makeTagID(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	return "tag-" + strings.Trim(slug, "-")
}
