package repository

import (
	"context"

	"spacebook/pkg/model"
)

type ResourceRepository interface {
	Create(ctx context.Context, r *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, r *model.Resource) error
	Delete(ctx context.Context, id string) error
}
