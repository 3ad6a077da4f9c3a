package places

import (
	"context"

	"waymark/internal/store"
	"waymark/shared/go/models"
)

// Store defines persistence operations for places.
type Store interface {
	UserIDByToken(ctx context.Context, token string) (int64, error)
	CreatePlace(ctx context.Context, token string, place *models.Place) (*models.Place, error)
	ListPlacesByUser(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error)
	GetPlace(ctx context.Context, id string) (*models.Place, error)
	UpdatePlace(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error)
	DeletePlace(ctx context.Context, token string, id string) error
	SetPlaceVisibility(ctx context.Context, token string, id string, public bool) error
}

// Service coordinates place CRUD operations.
type Service interface {
	Create(ctx context.Context, token string, place *models.Place) (*models.Place, error)
	List(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error)
	Get(ctx context.Context, token, id string) (*models.Place, error)
	Update(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error)
	Delete(ctx context.Context, token string, id string) error
	SetVisibility(ctx context.Context, token string, id string, public bool) error
}

type service struct {
	store Store
}

// New constructs a places Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, token string, place *models.Place) (*models.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreatePlace(ctx, token, place)
}

func (s *service) List(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlacesByUser(ctx, token, filter)
}

func (s *service) Get(ctx context.Context, token, id string) (*models.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	place, err := s.store.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}

	if !place.IsPublic {
		userID, err := s.store.UserIDByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if place.UserID != userID {
			// Hide the existence of other users' private places.
			return nil, store.ErrPlaceNotFound
		}
	}

	return place, nil
}

func (s *service) Update(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UpdatePlace(ctx, token, id, place)
}

func (s *service) Delete(ctx context.Context, token string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlace(ctx, token, id)
}

func (s *service) SetVisibility(ctx context.Context, token string, id string, public bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.SetPlaceVisibility(ctx, token, id, public)
}
