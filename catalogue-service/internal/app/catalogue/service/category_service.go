package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/repository"
	"relatos/catalogue-service/internal/app/catalogue/util"
	"relatos/pkg/logger"
	"relatos/pkg/metrics"
)

// CategoryService ведет справочник категорий. Полный список
// кешируется в Redis и сбрасывается при каждой записи.
type CategoryService struct {
	tx         repository.TxManager
	categories repository.CategoryRepository
	cache      util.CategoryCache // nil, если Redis недоступен
	cacheTTL   time.Duration
}

// NewCategoryService создает сервис категорий. cache может быть nil,
// тогда полный список всегда читается из хранилища.
func NewCategoryService(
	tx repository.TxManager,
	categories repository.CategoryRepository,
	cache util.CategoryCache,
	cacheTTL time.Duration,
) *CategoryService {
	return &CategoryService{
		tx:         tx,
		categories: categories,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// CreateCategory регистрирует категорию и сбрасывает кеш списка
func (s *CategoryService) CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error) {
	category := &entity.Category{Name: strings.TrimSpace(req.Name)}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkName(ctx, category.Name, 0); err != nil {
			return err
		}
		if err := s.categories.Create(ctx, category); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return alreadyExistsError(msgCategoryExists)
			}
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("category", "create")
	s.invalidate(ctx)
	return category, nil
}

// GetCategory возвращает активную категорию по id
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgCategoryMissing)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories возвращает страницу активных категорий
func (s *CategoryService) ListCategories(ctx context.Context, page entity.PageRequest) (*entity.Page[entity.Category], error) {
	result, err := s.categories.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return result, nil
}

// GetAllCategories отдает полный список из кеша, при промахе читает хранилище
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to read categories cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories, s.cacheTTL); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to cache categories")
		}
	}
	return categories, nil
}

// UpdateCategory переименовывает категорию и сбрасывает кеш списка
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req *entity.CategoryRequest) (*entity.Category, error) {
	var category *entity.Category
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		category, err = s.categories.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgCategoryNotFound)
			}
			return fmt.Errorf("failed to get category: %w", err)
		}

		category.Name = strings.TrimSpace(req.Name)
		if err := s.checkName(ctx, category.Name, id); err != nil {
			return err
		}

		if err := s.categories.Update(ctx, category); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return notFoundError(msgCategoryNotFound)
			case errors.Is(err, repository.ErrDuplicateKey):
				return alreadyExistsError(msgCategoryExists)
			}
			return fmt.Errorf("failed to update category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("category", "update")
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory помечает категорию удаленной; из книг она пропадает при чтении
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgCategoryNotFound)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	metrics.RecordWrite("category", "delete")
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) checkName(ctx context.Context, name string, selfID int64) error {
	found, err := s.categories.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find category: %w", err)
	}
	if found.ID != selfID {
		return alreadyExistsError(msgCategoryExists)
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}
