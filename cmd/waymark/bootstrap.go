package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"waymark/internal/store"
)

func bootstrapDemoData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	if err := ensureDemoUser(ctx, dataStore); err != nil {
		return err
	}
	if err := ensureDemoPlaces(ctx, db); err != nil {
		return err
	}
	return nil
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) error {
	if err := dataStore.CreateUser(ctx, "demo", "demo123"); err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	return nil
}

type demoPlace struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Notes     string
	Website   string
	IsPublic  bool
	Tags      []string
}

func ensureDemoPlaces(ctx context.Context, db *sql.DB) error {
	const username = "demo"

	placesTableExists, err := tableExists(ctx, db, "places")
	if err != nil {
		return fmt.Errorf("check places table: %w", err)
	}
	if !placesTableExists {
		return nil
	}

	var userID int64
	if err := db.QueryRowContext(ctx, `
		SELECT id
		FROM users
		WHERE username = $1
	`, username).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lookup demo user: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM places
		WHERE user_id = $1
	`, userID).Scan(&count); err != nil {
		return fmt.Errorf("count demo places: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := []demoPlace{
		{
			Name:      "Blue Bottle Coffee",
			Address:   "54 Mint St, San Francisco, CA 94103",
			Latitude:  37.7825,
			Longitude: -122.4078,
			Notes:     "Great pour-over, gets crowded after 9am.",
			Website:   "https://bluebottlecoffee.com",
			IsPublic:  true,
			Tags:      []string{"coffee", "work-friendly"},
		},
		{
			Name:      "Golden Gate Park",
			Address:   "San Francisco, CA",
			Latitude:  37.7694,
			Longitude: -122.4862,
			Notes:     "The bison paddock is near the west end.",
			IsPublic:  true,
			Tags:      []string{"outdoors"},
		},
		{
			Name:      "Tartine Bakery",
			Address:   "600 Guerrero St, San Francisco, CA 94110",
			Latitude:  37.7614,
			Longitude: -122.4241,
			Notes:     "Morning buns sell out early.",
			Website:   "https://tartinebakery.com",
			Tags:      []string{"bakery", "brunch"},
		},
		{
			Name:      "City Lights Booksellers",
			Address:   "261 Columbus Ave, San Francisco, CA 94133",
			Latitude:  37.7976,
			Longitude: -122.4065,
			Notes:     "Poetry room upstairs.",
			IsPublic:  true,
			Tags:      []string{"books"},
		},
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	tagIDs := make(map[string]int64)
	for _, place := range seed {
		placeID := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO places (id, user_id, name, address, latitude, longitude, notes, phone, website, hours, is_public)
			VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, '', $9)
		`, placeID, userID, place.Name, place.Address, place.Latitude, place.Longitude,
			place.Notes, place.Website, place.IsPublic); err != nil {
			return fmt.Errorf("insert demo place %q: %w", place.Name, err)
		}

		for _, tag := range place.Tags {
			tagID, ok := tagIDs[tag]
			if !ok {
				if err := tx.QueryRowContext(ctx, `
					INSERT INTO tags (user_id, name)
					VALUES ($1, $2)
					RETURNING id
				`, userID, tag).Scan(&tagID); err != nil {
					return fmt.Errorf("insert demo tag %q: %w", tag, err)
				}
				tagIDs[tag] = tagID
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO place_tags (place_id, tag_id)
				VALUES ($1, $2)
			`, placeID, tagID); err != nil {
				return fmt.Errorf("attach demo tag %q: %w", tag, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	tx = nil

	return nil
}

type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func tableExists(ctx context.Context, q queryRower, table string) (bool, error) {
	var name sql.NullString
	if err := q.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
