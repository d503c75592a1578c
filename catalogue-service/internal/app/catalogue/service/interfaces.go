package service

import (
	"context"

	"relatos/catalogue-service/internal/app/catalogue/entity"
)

// BookServiceInterface - операции над книгами, нужные HTTP-слою
type BookServiceInterface interface {
	CreateBook(ctx context.Context, req *entity.BookRequest) (*entity.Book, error)
	GetBook(ctx context.Context, id int64) (*entity.Book, error)
	ListBooks(ctx context.Context, filter entity.BookFilter, page entity.PageRequest) (*entity.Page[entity.Book], error)
	UpdateBook(ctx context.Context, id int64, req *entity.BookRequest) (*entity.Book, error)
	PatchBook(ctx context.Context, id int64, patch *entity.BookPatch) (*entity.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

// AuthorServiceInterface - операции над авторами, нужные HTTP-слою
type AuthorServiceInterface interface {
	CreateAuthor(ctx context.Context, req *entity.AuthorRequest) (*entity.Author, error)
	GetAuthor(ctx context.Context, id int64) (*entity.Author, error)
	ListAuthors(ctx context.Context, filter entity.AuthorFilter, page entity.PageRequest) (*entity.Page[entity.Author], error)
	UpdateAuthor(ctx context.Context, id int64, req *entity.AuthorRequest) (*entity.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}

// CategoryServiceInterface - операции над категориями, нужные HTTP-слою
type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id int64) (*entity.Category, error)
	ListCategories(ctx context.Context, page entity.PageRequest) (*entity.Page[entity.Category], error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *entity.CategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

var (
	_ BookServiceInterface     = (*BookService)(nil)
	_ AuthorServiceInterface   = (*AuthorService)(nil)
	_ CategoryServiceInterface = (*CategoryService)(nil)
)
