package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/repository"

	"github.com/shopspring/decimal"
)

// BookAssembler собирает книгу из запроса и сохраняет ее.
// Вызывать внутри транзакции: при ошибке все записи, включая новое
// изображение, откатываются вместе.
type BookAssembler struct {
	resolver ReferenceResolver
	books    repository.BookRepository
	images   repository.ImageRepository // nil у денормализованного хранилища
}

// NewBookAssembler создает сборщик книг. images равен nil у MongoDB.
func NewBookAssembler(resolver ReferenceResolver, books repository.BookRepository, images repository.ImageRepository) *BookAssembler {
	return &BookAssembler{
		resolver: resolver,
		books:    books,
		images:   images,
	}
}

// Assemble переносит в книгу все поля запроса и сохраняет ее.
// existing == nil означает создание новой книги.
func (a *BookAssembler) Assemble(ctx context.Context, existing *entity.Book, req *entity.BookRequest) (*entity.Book, error) {
	if req.PublishedDate == nil || req.Stock == nil || req.Price == nil || req.Visibility == nil {
		return nil, validationError(msgBookFieldsMissing)
	}
	if err := checkPrice(*req.Price); err != nil {
		return nil, err
	}
	if *req.Stock < 0 {
		return nil, validationError(msgNegativeStock)
	}

	book := &entity.Book{}
	if existing != nil {
		book = existing
	}

	if err := a.checkISBN(ctx, req.ISBN, book.ID); err != nil {
		return nil, err
	}

	author, err := a.resolver.ResolveAuthor(ctx, req.Author)
	if err != nil {
		return nil, err
	}
	categories, err := a.resolver.ResolveCategories(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	// прежнее изображение остается в хранилище без ссылок
	image, err := a.newImage(ctx, req.URLImage)
	if err != nil {
		return nil, err
	}

	book.Title = req.Title
	book.Description = req.Description
	book.ISBN = strings.TrimSpace(req.ISBN)
	book.PublishedDate = req.PublishedDate.UTC()
	book.Stock = *req.Stock
	book.Price = *req.Price
	book.Rating = req.Rating
	book.Visibility = *req.Visibility
	book.Author = *author
	book.AuthorID = author.ID
	book.Categories = categories
	book.Image = image

	if err := a.save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Merge применяет к книге только переданные поля патча и сохраняет ее.
// Пустой список категорий очищает их, отсутствующий оставляет как есть.
func (a *BookAssembler) Merge(ctx context.Context, existing *entity.Book, patch *entity.BookPatch) (*entity.Book, error) {
	if price, ok := patch.Price.Get(); ok {
		if err := checkPrice(price); err != nil {
			return nil, err
		}
	}
	if stock, ok := patch.Stock.Get(); ok && stock < 0 {
		return nil, validationError(msgNegativeStock)
	}

	if isbn, ok := patch.ISBN.Get(); ok && !strings.EqualFold(strings.TrimSpace(isbn), existing.ISBN) {
		if err := a.checkISBN(ctx, isbn, existing.ID); err != nil {
			return nil, err
		}
	}

	book := *existing

	if ref, ok := patch.Author.Get(); ok {
		author, err := a.resolver.ResolveAuthor(ctx, ref)
		if err != nil {
			return nil, err
		}
		book.Author = *author
		book.AuthorID = author.ID
	}

	if refs, ok := patch.Category.Get(); ok {
		if len(refs) == 0 {
			book.Categories = []entity.Category{}
		} else {
			categories, err := a.resolver.ResolveCategories(ctx, refs)
			if err != nil {
				return nil, err
			}
			book.Categories = categories
		}
	}

	if url, ok := patch.URLImage.Get(); ok {
		image, err := a.replaceImage(ctx, existing, url)
		if err != nil {
			return nil, err
		}
		book.Image = image
	}

	if v, ok := patch.Title.Get(); ok {
		book.Title = v
	}
	if v, ok := patch.Description.Get(); ok {
		book.Description = v
	}
	if v, ok := patch.ISBN.Get(); ok {
		book.ISBN = strings.TrimSpace(v)
	}
	if v, ok := patch.PublishedDate.Get(); ok {
		book.PublishedDate = v.UTC()
	}
	if v, ok := patch.Stock.Get(); ok {
		book.Stock = v
	}
	if v, ok := patch.Price.Get(); ok {
		book.Price = v
	}
	if v, ok := patch.Rating.Get(); ok {
		book.Rating = &v
	}
	if v, ok := patch.Visibility.Get(); ok {
		book.Visibility = v
	}

	if err := a.save(ctx, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// checkISBN отклоняет ISBN, уже занятый другой активной книгой
func (a *BookAssembler) checkISBN(ctx context.Context, isbn string, selfID int64) error {
	found, err := a.books.FindByISBN(ctx, strings.TrimSpace(isbn))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check isbn: %w", err)
	}
	if found.ID != selfID {
		return alreadyExistsError(msgBookExists)
	}
	return nil
}

func (a *BookAssembler) newImage(ctx context.Context, url string) (*entity.Image, error) {
	image := &entity.Image{URL: strings.TrimSpace(url)}
	if a.images == nil {
		return image, nil
	}

	if err := a.images.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return image, nil
}

// replaceImage проверяет, что текущее изображение книги существует, и
// сохраняет новое с переданным адресом
func (a *BookAssembler) replaceImage(ctx context.Context, book *entity.Book, url string) (*entity.Image, error) {
	if a.images == nil {
		return &entity.Image{URL: strings.TrimSpace(url)}, nil
	}

	if book.ImageID == nil {
		return nil, notFoundError(msgImageMissing)
	}
	if _, err := a.images.GetByID(ctx, *book.ImageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgImageMissing)
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return a.newImage(ctx, url)
}

func checkPrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return validationError(msgNegativePrice)
	case price.GreaterThan(entity.MaxPrice):
		return validationError(msgPriceTooHigh)
	}
	return nil
}

func (a *BookAssembler) save(ctx context.Context, book *entity.Book) error {
	if err := a.books.Save(ctx, book); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return alreadyExistsError(msgBookExists)
		case errors.Is(err, repository.ErrOutOfRange):
			return validationError(msgValueOutOfRange)
		case errors.Is(err, repository.ErrNotFound):
			return notFoundError(msgBookNotFound)
		}
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}
