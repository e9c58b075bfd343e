package repository

import (
	"context"

	"partmatch/internal/domain/entity"
)

type FileMetadataRepository interface {
	Create(ctx context.Context, metadata *entity.FileMetadata) error
	GetByEntityID(ctx context.Context, entityType, entityID string) ([]*entity.FileMetadata, error)
}
