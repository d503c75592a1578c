package repository

import (
	"context"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/metrics"

	"gorm.io/gorm"
)

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *entity.Image) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, "images")

	image.Status = entity.StatusActive
	err := conn(ctx, r.db).Create(image).Error
	timer.Done(err)

	return translateError(err)
}

func (r *imageRepository) GetByID(ctx context.Context, id int64) (*entity.Image, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "images")

	var image entity.Image
	err := conn(ctx, r.db).
		Scopes(activeOnly("images")).
		Where("images.id = ?", id).
		First(&image).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &image, nil
}
