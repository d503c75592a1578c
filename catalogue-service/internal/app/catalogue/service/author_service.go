package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/repository"
	"relatos/pkg/metrics"
)

// AuthorService - операции каталога над авторами
type AuthorService struct {
	tx      repository.TxManager
	authors repository.AuthorRepository
}

// NewAuthorService создает сервис авторов
func NewAuthorService(tx repository.TxManager, authors repository.AuthorRepository) *AuthorService {
	return &AuthorService{tx: tx, authors: authors}
}

// CreateAuthor регистрирует автора; имя и фамилия уникальны без учета регистра
func (s *AuthorService) CreateAuthor(ctx context.Context, req *entity.AuthorRequest) (*entity.Author, error) {
	author := &entity.Author{
		FirstName: strings.TrimSpace(req.Name),
		LastName:  strings.TrimSpace(req.LastName),
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkName(ctx, author.FirstName, author.LastName, 0); err != nil {
			return err
		}
		if err := s.authors.Create(ctx, author); err != nil {
			return translateAuthorError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("author", "create")
	return author, nil
}

// GetAuthor возвращает активного автора по id
func (s *AuthorService) GetAuthor(ctx context.Context, id int64) (*entity.Author, error) {
	author, err := s.authors.GetByID(ctx, id)
	if err != nil {
		return nil, translateAuthorError(err)
	}
	return author, nil
}

// ListAuthors возвращает страницу активных авторов с учетом фильтра
func (s *AuthorService) ListAuthors(ctx context.Context, filter entity.AuthorFilter, page entity.PageRequest) (*entity.Page[entity.Author], error) {
	result, err := s.authors.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return result, nil
}

// UpdateAuthor меняет имя и фамилию автора; новое имя не должно совпадать с чужим
func (s *AuthorService) UpdateAuthor(ctx context.Context, id int64, req *entity.AuthorRequest) (*entity.Author, error) {
	var author *entity.Author
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		author, err = s.GetAuthor(ctx, id)
		if err != nil {
			return err
		}

		author.FirstName = strings.TrimSpace(req.Name)
		author.LastName = strings.TrimSpace(req.LastName)

		if err := s.checkName(ctx, author.FirstName, author.LastName, id); err != nil {
			return err
		}
		if err := s.authors.Update(ctx, author); err != nil {
			return translateAuthorError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("author", "update")
	return author, nil
}

// DeleteAuthor помечает автора удаленным; книги автора не меняются
func (s *AuthorService) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.authors.Delete(ctx, id); err != nil {
		return translateAuthorError(err)
	}

	metrics.RecordWrite("author", "delete")
	return nil
}

func (s *AuthorService) checkName(ctx context.Context, firstName, lastName string, selfID int64) error {
	found, err := s.authors.FindByName(ctx, firstName, lastName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find author: %w", err)
	}
	if found.ID != selfID {
		return alreadyExistsError(msgAuthorExists)
	}
	return nil
}

func translateAuthorError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFoundError(msgAuthorNotFound)
	case errors.Is(err, repository.ErrDuplicateKey):
		return alreadyExistsError(msgAuthorExists)
	}
	return fmt.Errorf("author storage error: %w", err)
}
