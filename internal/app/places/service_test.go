package places

import (
	"context"
	"errors"
	"testing"

	"waymark/internal/store"
	"waymark/shared/go/models"
)

type fakeStore struct {
	userID  int64
	authErr error

	place    *models.Place
	placeErr error
}

func (f *fakeStore) UserIDByToken(ctx context.Context, token string) (int64, error) {
	if f.authErr != nil {
		return 0, f.authErr
	}
	return f.userID, nil
}

func (f *fakeStore) CreatePlace(ctx context.Context, token string, place *models.Place) (*models.Place, error) {
	return place, nil
}

func (f *fakeStore) ListPlacesByUser(ctx context.Context, token string, filter models.PlaceFilter) ([]*models.Place, error) {
	return nil, nil
}

func (f *fakeStore) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return f.place, nil
}

func (f *fakeStore) UpdatePlace(ctx context.Context, token string, id string, place *models.Place) (*models.Place, error) {
	return place, nil
}

func (f *fakeStore) DeletePlace(ctx context.Context, token string, id string) error {
	return nil
}

func (f *fakeStore) SetPlaceVisibility(ctx context.Context, token string, id string, public bool) error {
	return nil
}

func TestGetOwnerReadsPrivatePlace(t *testing.T) {
	st := &fakeStore{
		userID: 42,
		place:  &models.Place{ID: "p1", UserID: 42, Name: "Hidden Spot"},
	}
	svc := New(st)

	place, err := svc.Get(context.Background(), "token", "p1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if place.ID != "p1" {
		t.Fatalf("unexpected place: %#v", place)
	}
}

func TestGetHidesOtherUsersPrivatePlace(t *testing.T) {
	st := &fakeStore{
		userID: 7,
		place:  &models.Place{ID: "p1", UserID: 42, Name: "Hidden Spot"},
	}
	svc := New(st)

	if _, err := svc.Get(context.Background(), "token", "p1"); !errors.Is(err, store.ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
}

func TestGetPublicPlaceVisibleToAnyUser(t *testing.T) {
	st := &fakeStore{
		userID: 7,
		place:  &models.Place{ID: "p1", UserID: 42, Name: "Cafe X", IsPublic: true},
	}
	svc := New(st)

	place, err := svc.Get(context.Background(), "token", "p1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !place.IsPublic {
		t.Fatalf("unexpected place: %#v", place)
	}
}

func TestGetPrivatePlaceRejectsBadToken(t *testing.T) {
	st := &fakeStore{
		authErr: store.ErrUnauthorized,
		place:   &models.Place{ID: "p1", UserID: 42, Name: "Hidden Spot"},
	}
	svc := New(st)

	if _, err := svc.Get(context.Background(), "stale", "p1"); !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
