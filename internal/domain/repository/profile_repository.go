package repository

import (
	"context"

	"partmatch/internal/domain/entity"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error)
	ListInsightsSubscribers(ctx context.Context) ([]*entity.Profile, error)
}
