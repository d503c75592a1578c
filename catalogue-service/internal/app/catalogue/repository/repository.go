package repository

import (
	"context"
	"errors"

	"relatos/catalogue-service/internal/app/catalogue/entity"
)

const metricsService = "catalogue-service"

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrOutOfRange   = errors.New("numeric value out of range")
)

// TxManager выполняет fn в одной транзакции. Репозитории, вызванные
// с контекстом из fn, работают внутри этой транзакции.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuthorRepository interface {
	Create(ctx context.Context, author *entity.Author) error
	GetByID(ctx context.Context, id int64) (*entity.Author, error)
	FindByName(ctx context.Context, firstName, lastName string) (*entity.Author, error)
	List(ctx context.Context, filter entity.AuthorFilter, page entity.PageRequest) (*entity.Page[entity.Author], error)
	Update(ctx context.Context, author *entity.Author) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetByIDs(ctx context.Context, ids []int64) ([]entity.Category, error)
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context, page entity.PageRequest) (*entity.Page[entity.Category], error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}

// ImageRepository есть только у нормализованного хранилища
type ImageRepository interface {
	Create(ctx context.Context, image *entity.Image) error
	GetByID(ctx context.Context, id int64) (*entity.Image, error)
}

// BookRepository - порт хранилища книг. Save вставляет книгу без id
// и обновляет существующую; после Save у книги загружены все связи.
type BookRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*entity.Book, error)
	List(ctx context.Context, filter entity.BookFilter, page entity.PageRequest) (*entity.Page[entity.Book], error)
	Save(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id int64) error
}
