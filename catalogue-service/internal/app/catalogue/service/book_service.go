package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/repository"
	"relatos/catalogue-service/internal/app/catalogue/util"
	"relatos/pkg/logger"
	"relatos/pkg/metrics"

	"github.com/google/uuid"
)

// BookService - операции каталога над книгами. Каждая запись выполняется
// в одной транзакции; события в Kafka уходят только после фиксации.
type BookService struct {
	tx        repository.TxManager
	books     repository.BookRepository
	assembler *BookAssembler
	publisher util.MessagePublisher // nil, если Kafka выключена
}

// NewBookService создает сервис книг. publisher может быть nil.
func NewBookService(
	tx repository.TxManager,
	books repository.BookRepository,
	assembler *BookAssembler,
	publisher util.MessagePublisher,
) *BookService {
	return &BookService{
		tx:        tx,
		books:     books,
		assembler: assembler,
		publisher: publisher,
	}
}

// CreateBook создает книгу вместе с новым изображением
func (s *BookService) CreateBook(ctx context.Context, req *entity.BookRequest) (*entity.Book, error) {
	var book *entity.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		book, err = s.assembler.Assemble(ctx, nil, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("book", "create")
	s.publish(ctx, entity.EventBookCreated, book)
	return book, nil
}

// GetBook возвращает активную книгу с автором, изображением и категориями
func (s *BookService) GetBook(ctx context.Context, id int64) (*entity.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgBookNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// ListBooks возвращает страницу книг; незаданные поля фильтра не ограничивают выборку
func (s *BookService) ListBooks(ctx context.Context, filter entity.BookFilter, page entity.PageRequest) (*entity.Page[entity.Book], error) {
	result, err := s.books.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	metrics.CatalogueBooksListed.Observe(float64(len(result.Content)))
	return result, nil
}

// UpdateBook заменяет все поля книги, включая изображение
func (s *BookService) UpdateBook(ctx context.Context, id int64, req *entity.BookRequest) (*entity.Book, error) {
	var book *entity.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.GetBook(ctx, id)
		if err != nil {
			return err
		}
		book, err = s.assembler.Assemble(ctx, existing, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("book", "update")
	s.publish(ctx, entity.EventBookUpdated, book)
	return book, nil
}

// PatchBook меняет только переданные поля
func (s *BookService) PatchBook(ctx context.Context, id int64, patch *entity.BookPatch) (*entity.Book, error) {
	var book *entity.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.GetBook(ctx, id)
		if err != nil {
			return err
		}
		book, err = s.assembler.Merge(ctx, existing, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWrite("book", "patch")
	s.publish(ctx, entity.EventBookUpdated, book)
	return book, nil
}

// DeleteBook удаляет книгу; автор, категории и изображение не затрагиваются
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.books.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgBookNotFound)
			}
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordWrite("book", "delete")
	s.publish(ctx, entity.EventBookDeleted, &entity.Book{Record: entity.Record{ID: id}})
	return nil
}

// publish отправляет событие о книге; ошибка только логируется,
// запись в каталог к этому моменту уже зафиксирована
func (s *BookService) publish(ctx context.Context, eventType string, book *entity.Book) {
	if s.publisher == nil {
		return
	}

	event := entity.BookEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		BookID:      book.ID,
		ISBN:        book.ISBN,
		Title:       book.Title,
		AuthorID:    book.AuthorID,
		CategoryIDs: book.CategoryIDs(),
		Price:       book.Price,
		Stock:       book.Stock,
		Visibility:  book.Visibility,
		Timestamp:   time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Msg("failed to marshal book event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.FormatInt(book.ID, 10), data); err != nil {
		logger.Ctx(ctx).Error().
			Err(err).
			Str("event_type", eventType).
			Int64("book_id", book.ID).
			Msg("failed to publish book event")
	}
}
