// Package searchservice provides the authenticated map search: the user's
// own places merged with suggestions from the external places lookup.
package searchservice

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"waymark/internal/placesapi"
	"waymark/shared/go/models"
)

// Store defines the persistence operations search needs.
type Store interface {
	ListPlacesByUser(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error)
}

// Results aggregates both result buckets.
type Results struct {
	Places      []*models.Place   `json:"places"`
	Suggestions []placesapi.Place `json:"suggestions"`
}

// Service fans a query out to owned places and the external lookup.
type Service struct {
	store  Store
	places placesapi.Client
}

// NewService creates a search service. The places client may be nil when
// no lookup credentials are configured; suggestions are then skipped.
func NewService(store Store, places placesapi.Client) *Service {
	return &Service{store: store, places: places}
}

// Search runs both lookups concurrently. A failure fetching the user's
// own places fails the search; a suggestion failure is logged and the
// owned results are returned alone.
func (s *Service) Search(ctx context.Context, token, query string) (*Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := &Results{
		Places:      []*models.Place{},
		Suggestions: []placesapi.Place{},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ownedErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		owned, err := s.store.ListPlacesByUser(ctx, token, models.PlaceFilter{Query: query})
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			ownedErr = err
			return
		}
		if owned != nil {
			results.Places = owned
		}
	}()

	if s.places != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			suggestions, err := s.places.SearchText(ctx, query, nil)
			if err != nil {
				log.Warn().Err(err).Str("query", query).Msg("Place suggestions unavailable")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			results.Suggestions = suggestions
		}()
	}

	wg.Wait()

	if ownedErr != nil {
		return nil, ownedErr
	}

	return results, nil
}
