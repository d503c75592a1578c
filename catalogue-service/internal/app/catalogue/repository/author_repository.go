package repository

import (
	"context"
	"fmt"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/metrics"

	"gorm.io/gorm"
)

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository создает репозиторий авторов PostgreSQL
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *entity.Author) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, "authors")

	author.Status = entity.StatusActive
	err := conn(ctx, r.db).Create(author).Error
	timer.Done(err)

	return translateError(err)
}

func (r *authorRepository) GetByID(ctx context.Context, id int64) (*entity.Author, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "authors")

	var author entity.Author
	err := conn(ctx, r.db).
		Scopes(activeOnly("authors")).
		Where("authors.id = ?", id).
		First(&author).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &author, nil
}

// FindByName ищет автора по имени и фамилии без учета регистра
func (r *authorRepository) FindByName(ctx context.Context, firstName, lastName string) (*entity.Author, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "authors")

	var author entity.Author
	err := conn(ctx, r.db).
		Scopes(activeOnly("authors")).
		Where("LOWER(authors.first_name) = LOWER(?) AND LOWER(authors.last_name) = LOWER(?)", firstName, lastName).
		First(&author).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &author, nil
}

// List возвращает страницу авторов, новые первыми
func (r *authorRepository) List(ctx context.Context, filter entity.AuthorFilter, page entity.PageRequest) (*entity.Page[entity.Author], error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "authors")

	query := conn(ctx, r.db).Model(&entity.Author{}).Scopes(activeOnly("authors"))
	if filter.FirstName != nil {
		query = query.Where("LOWER(authors.first_name) = LOWER(?)", *filter.FirstName)
	}
	if filter.LastName != nil {
		query = query.Where("LOWER(authors.last_name) = LOWER(?)", *filter.LastName)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to count authors: %w", err)
	}

	var authors []entity.Author
	err := query.
		Order("authors.created_at DESC, authors.id DESC").
		Scopes(paginate(page)).
		Find(&authors).Error
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}

	return entity.NewPage(authors, page, total), nil
}

func (r *authorRepository) Update(ctx context.Context, author *entity.Author) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, "authors")

	now := time.Now()
	result := conn(ctx, r.db).
		Model(&entity.Author{}).
		Scopes(activeOnly("authors")).
		Where("authors.id = ?", author.ID).
		Updates(map[string]interface{}{
			"first_name": author.FirstName,
			"last_name":  author.LastName,
			"updated_at": now,
		})
	timer.Done(result.Error)

	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	author.UpdatedAt = now
	return nil
}

// Delete помечает автора удаленным; книги продолжают на него ссылаться
func (r *authorRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, "authors")

	result := conn(ctx, r.db).
		Model(&entity.Author{}).
		Scopes(activeOnly("authors")).
		Where("authors.id = ?", id).
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
