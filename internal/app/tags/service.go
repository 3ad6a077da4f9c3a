package tags

import (
	"context"

	"waymark/shared/go/models"
)

// Store defines persistence operations for tags.
type Store interface {
	ListTagsByUser(ctx context.Context, token string) ([]*models.TagWithCount, error)
	RenameTag(ctx context.Context, token string, id int64, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, token string, id int64) error
}

// Service coordinates tag management. Tag creation happens implicitly
// through place edits and imports, never through this service.
type Service interface {
	List(ctx context.Context, token string) ([]*models.TagWithCount, error)
	Rename(ctx context.Context, token string, id int64, name string) (*models.Tag, error)
	Delete(ctx context.Context, token string, id int64) error
}

type service struct {
	store Store
}

// New constructs a tags Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, token string) ([]*models.TagWithCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListTagsByUser(ctx, token)
}

func (s *service) Rename(ctx context.Context, token string, id int64, name string) (*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.RenameTag(ctx, token, id, name)
}

func (s *service) Delete(ctx context.Context, token string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteTag(ctx, token, id)
}
