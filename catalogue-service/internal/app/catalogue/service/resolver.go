package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/repository"
)

// ReferenceResolver превращает ссылки из запроса книги в автора и категории
type ReferenceResolver interface {
	ResolveAuthor(ctx context.Context, ref entity.AuthorRef) (*entity.Author, error)
	ResolveCategories(ctx context.Context, refs []entity.CategoryRef) ([]entity.Category, error)
}

type relationalResolver struct {
	authors    repository.AuthorRepository
	categories repository.CategoryRepository
}

// NewRelationalResolver ищет автора и категории по id в нормализованном хранилище
func NewRelationalResolver(authors repository.AuthorRepository, categories repository.CategoryRepository) ReferenceResolver {
	return &relationalResolver{authors: authors, categories: categories}
}

func (r *relationalResolver) ResolveAuthor(ctx context.Context, ref entity.AuthorRef) (*entity.Author, error) {
	if ref.ID == nil {
		return nil, validationError(msgAuthorMissing)
	}

	author, err := r.authors.GetByID(ctx, *ref.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referenceNotFound(msgAuthorMissing)
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return author, nil
}

// ResolveCategories возвращает категории в порядке запроса, повторные id схлопываются.
// Если найдено меньше категорий, чем запрошено, запрос отклоняется целиком.
func (r *relationalResolver) ResolveCategories(ctx context.Context, refs []entity.CategoryRef) ([]entity.Category, error) {
	ids := make([]int64, 0, len(refs))
	seen := make(map[int64]struct{}, len(refs))
	for _, ref := range refs {
		if ref.ID == nil {
			return nil, validationError(msgCategoryMissing)
		}
		if _, ok := seen[*ref.ID]; ok {
			continue
		}
		seen[*ref.ID] = struct{}{}
		ids = append(ids, *ref.ID)
	}
	if len(ids) == 0 {
		return nil, validationError(msgCategoryMissing)
	}

	found, err := r.categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if len(found) == 0 {
		return nil, referenceNotFound(msgCategoryMissing)
	}
	if len(found) != len(ids) {
		return nil, referenceNotFound(msgCategoriesMissing)
	}

	byID := make(map[int64]entity.Category, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	categories := make([]entity.Category, 0, len(ids))
	for _, id := range ids {
		categories = append(categories, byID[id])
	}
	return categories, nil
}

type denormalizedResolver struct{}

// NewDenormalizedResolver строит автора и категории прямо из полей запроса.
// Хранилище не опрашивается: каждая книга несет свою копию данных.
func NewDenormalizedResolver() ReferenceResolver {
	return denormalizedResolver{}
}

func (denormalizedResolver) ResolveAuthor(_ context.Context, ref entity.AuthorRef) (*entity.Author, error) {
	firstName := strings.TrimSpace(ref.Name)
	lastName := strings.TrimSpace(ref.LastName)
	if firstName == "" || lastName == "" {
		return nil, validationError(msgAuthorNameMissing)
	}

	author := &entity.Author{FirstName: firstName, LastName: lastName}
	if ref.ID != nil {
		author.ID = *ref.ID
	}
	return author, nil
}

func (denormalizedResolver) ResolveCategories(_ context.Context, refs []entity.CategoryRef) ([]entity.Category, error) {
	if len(refs) == 0 {
		return nil, validationError(msgCategoryMissing)
	}

	categories := make([]entity.Category, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			return nil, validationError(msgCategoryNameEmpty)
		}

		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		category := entity.Category{Name: name}
		if ref.ID != nil {
			category.ID = *ref.ID
		}
		categories = append(categories, category)
	}
	return categories, nil
}
