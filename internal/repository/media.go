package repository

import (
	"context"

	"musefeed/internal/models"
	"musefeed/internal/observability"

	"gorm.io/gorm"
)

// MediaRepository reads the media catalog. Writes exist for seeding only.
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	Exists(ctx context.Context, id uint) (bool, error)
	SearchIDsByName(ctx context.Context, query string) ([]uint, error)
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *models.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *mediaRepository) Exists(ctx context.Context, id uint) (bool, error) {
	defer observability.TrackQuery("exists", "media")()
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Media{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SearchIDsByName returns ids of media whose name contains query, case-insensitive.
func (r *mediaRepository) SearchIDsByName(ctx context.Context, query string) ([]uint, error) {
	defer observability.TrackQuery("search_name", "media")()
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, ContainsPattern(query)).
		Pluck("id", &ids).Error
	return ids, err
}
