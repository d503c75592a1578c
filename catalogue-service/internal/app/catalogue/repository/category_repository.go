package repository

import (
	"context"
	"fmt"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/metrics"

	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает репозиторий категорий PostgreSQL
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, "categories")

	category.Status = entity.StatusActive
	err := conn(ctx, r.db).Create(category).Error
	timer.Done(err)

	return translateError(err)
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	var category entity.Category
	err := conn(ctx, r.db).
		Scopes(activeOnly("categories")).
		Where("categories.id = ?", id).
		First(&category).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// GetByIDs возвращает найденные активные категории; отсутствующие id просто пропускаются
func (r *categoryRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.Category, error) {
	if len(ids) == 0 {
		return []entity.Category{}, nil
	}

	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	var categories []entity.Category
	err := conn(ctx, r.db).
		Scopes(activeOnly("categories")).
		Where("categories.id IN ?", ids).
		Order("categories.id").
		Find(&categories).Error
	timer.Done(err)

	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	var category entity.Category
	err := conn(ctx, r.db).
		Scopes(activeOnly("categories")).
		Where("LOWER(categories.name) = LOWER(?)", name).
		First(&category).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, page entity.PageRequest) (*entity.Page[entity.Category], error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	query := conn(ctx, r.db).Model(&entity.Category{}).Scopes(activeOnly("categories")).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []entity.Category
	err := query.Order("categories.id").Scopes(paginate(page)).Find(&categories).Error
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return entity.NewPage(categories, page, total), nil
}

// GetAll возвращает все активные категории по алфавиту
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	var categories []entity.Category
	err := conn(ctx, r.db).
		Scopes(activeOnly("categories")).
		Order("categories.name").
		Find(&categories).Error
	timer.Done(err)

	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, "categories")

	now := time.Now()
	result := conn(ctx, r.db).
		Model(&entity.Category{}).
		Scopes(activeOnly("categories")).
		Where("categories.id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":       category.Name,
			"updated_at": now,
		})
	timer.Done(result.Error)

	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	category.UpdatedAt = now
	return nil
}

// Delete помечает категорию удаленной; из выдачи книг она пропадает при следующем чтении
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, "categories")

	result := conn(ctx, r.db).
		Model(&entity.Category{}).
		Scopes(activeOnly("categories")).
		Where("categories.id = ?", id).
		Updates(map[string]interface{}{
			"status":     entity.StatusDeleted,
			"updated_at": time.Now(),
		})
	timer.Done(result.Error)

	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
