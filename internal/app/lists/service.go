package lists

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"waymark/internal/store"
	"waymark/shared/go/models"
)

// ErrInvalidShareToken indicates an expired or tampered share link.
var ErrInvalidShareToken = errors.New("invalid share token")

// shareTokenTTL bounds how long a share link stays redeemable.
const shareTokenTTL = 30 * 24 * time.Hour

// Store defines persistence operations for lists.
type Store interface {
	UserIDByToken(ctx context.Context, token string) (int64, error)
	CreateList(ctx context.Context, token string, list *models.List) (*models.List, error)
	ListListsByUser(ctx context.Context, token string) ([]*models.List, error)
	GetList(ctx context.Context, id int64) (*models.ListWithPlaces, error)
	UpdateList(ctx context.Context, token string, id int64, list *models.List) (*models.List, error)
	DeleteList(ctx context.Context, token string, id int64) error
	AddPlaceToList(ctx context.Context, token string, listID int64, placeID string) error
	RemovePlaceFromList(ctx context.Context, token string, listID int64, placeID string) error
}

// Service coordinates list operations, including share links.
type Service interface {
	Create(ctx context.Context, token string, list *models.List) (*models.List, error)
	List(ctx context.Context, token string) ([]*models.List, error)
	Get(ctx context.Context, token string, id int64) (*models.ListWithPlaces, error)
	Update(ctx context.Context, token string, id int64, list *models.List) (*models.List, error)
	Delete(ctx context.Context, token string, id int64) error
	AddPlace(ctx context.Context, token string, listID int64, placeID string) error
	RemovePlace(ctx context.Context, token string, listID int64, placeID string) error

	// Share mints a signed link token for a list the caller owns.
	Share(ctx context.Context, token string, listID int64) (string, error)
	// Redeem resolves a share token to a read-only list view. No session
	// is required.
	Redeem(ctx context.Context, shareToken string) (*models.ListWithPlaces, error)
}

type service struct {
	store  Store
	secret []byte
}

// New constructs a lists Service. The secret signs share-link tokens.
func New(store Store, secret string) Service {
	return &service{store: store, secret: []byte(secret)}
}

func (s *service) Create(ctx context.Context, token string, list *models.List) (*models.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreateList(ctx, token, list)
}

func (s *service) List(ctx context.Context, token string) ([]*models.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListListsByUser(ctx, token)
}

func (s *service) Get(ctx context.Context, token string, id int64) (*models.ListWithPlaces, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := s.store.GetList(ctx, id)
	if err != nil {
		return nil, err
	}

	if !list.IsPublic {
		userID, err := s.store.UserIDByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if list.UserID != userID {
			// Hide the existence of other users' private lists.
			return nil, store.ErrListNotFound
		}
	}

	return list, nil
}

func (s *service) Update(ctx context.Context, token string, id int64, list *models.List) (*models.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UpdateList(ctx, token, id, list)
}

func (s *service) Delete(ctx context.Context, token string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteList(ctx, token, id)
}

func (s *service) AddPlace(ctx context.Context, token string, listID int64, placeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.AddPlaceToList(ctx, token, listID, placeID)
}

func (s *service) RemovePlace(ctx context.Context, token string, listID int64, placeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemovePlaceFromList(ctx, token, listID, placeID)
}

func (s *service) Share(ctx context.Context, token string, listID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	userID, err := s.store.UserIDByToken(ctx, token)
	if err != nil {
		return "", err
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return "", err
	}
	if list.UserID != userID {
		return "", store.ErrListNotFound
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "waymark",
		Subject:   strconv.FormatInt(listID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(shareTokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign share token: %w", err)
	}

	return signed, nil
}

func (s *service) Redeem(ctx context.Context, shareToken string) (*models.ListWithPlaces, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(shareToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidShareToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, ErrInvalidShareToken
	}

	listID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidShareToken
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	// A share link stops working the moment the owner makes the list
	// private again.
	if !list.IsPublic {
		return nil, ErrInvalidShareToken
	}

	return list, nil
}
