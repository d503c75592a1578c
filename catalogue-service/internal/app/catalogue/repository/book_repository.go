package repository

import (
	"context"
	"fmt"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository создает репозиторий книг PostgreSQL.
// Удаление мягкое: книга получает статус deleted и исчезает из выборок.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// withRelations подгружает автора, изображение и активные категории.
// Категории идут по возрастанию id: таблица связей порядок не хранит.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Image").
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Where("categories.status = ?", entity.StatusActive).Order("categories.id")
		})
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*entity.Book, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "books")

	var book entity.Book
	err := conn(ctx, r.db).
		Scopes(activeOnly("books"), withRelations).
		Where("books.id = ?", id).
		First(&book).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &book, nil
}

// FindByISBN ищет активную книгу по ISBN без учета регистра
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*entity.Book, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "books")

	var book entity.Book
	err := conn(ctx, r.db).
		Scopes(activeOnly("books")).
		Where("LOWER(books.isbn) = LOWER(?)", isbn).
		First(&book).Error
	timer.Done(err)

	if err != nil {
		return nil, translateError(err)
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, filter entity.BookFilter, page entity.PageRequest) (*entity.Page[entity.Book], error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "books")

	query := conn(ctx, r.db).
		Model(&entity.Book{}).
		Scopes(activeOnly("books"), bookFilter(filter)).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	var books []entity.Book
	err := query.
		Scopes(withRelations, paginate(page)).
		Order("books.created_at DESC, books.id DESC").
		Find(&books).Error
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return entity.NewPage(books, page, total), nil
}

// bookFilter собирает условия выборки: каждое заданное поле - отдельный
// параметризованный Where, все вместе объединяются через AND
func bookFilter(f entity.BookFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Title != nil {
			db = db.Where("LOWER(books.title) = LOWER(?)", *f.Title)
		}
		if f.ISBN != nil {
			db = db.Where("LOWER(books.isbn) = LOWER(?)", *f.ISBN)
		}
		if f.AuthorID != nil {
			db = db.Where("books.author_id = ?", *f.AuthorID)
		}
		if f.AuthorName != nil {
			db = db.Where("EXISTS (SELECT 1 FROM authors a WHERE a.id = books.author_id AND LOWER(a.first_name) = LOWER(?))", *f.AuthorName)
		}
		if f.AuthorLastName != nil {
			db = db.Where("EXISTS (SELECT 1 FROM authors a WHERE a.id = books.author_id AND LOWER(a.last_name) = LOWER(?))", *f.AuthorLastName)
		}
		if f.PublishedDate != nil {
			db = db.Where("books.published_date = ?", *f.PublishedDate)
		}
		if f.CategoryID != nil {
			db = db.Where("EXISTS (SELECT 1 FROM book_categories bc WHERE bc.book_id = books.id AND bc.category_id = ?)", *f.CategoryID)
		}
		if f.CategoryName != nil {
			db = db.Where(`EXISTS (SELECT 1 FROM book_categories bc JOIN categories c ON c.id = bc.category_id
				WHERE bc.book_id = books.id AND c.status = 'active' AND LOWER(c.name) = LOWER(?))`, *f.CategoryName)
		}
		if f.Rating != nil {
			db = db.Where("books.rating = ?", *f.Rating)
		}
		if f.Visibility != nil {
			db = db.Where("books.visibility = ?", *f.Visibility)
		}
		return db
	}
}

// Save сохраняет строку книги и набор категорий, затем перечитывает книгу со связями.
// Автор, изображение и категории сохраняются своими репозиториями и здесь не трогаются.
func (r *bookRepository) Save(ctx context.Context, book *entity.Book) error {
	db := conn(ctx, r.db)

	op := metrics.DbOpUpdate
	if book.ID == 0 {
		op = metrics.DbOpInsert
	}
	timer := metrics.NewDbTimer(metricsService, op, "books")

	if book.Author.ID != 0 {
		book.AuthorID = book.Author.ID
	}
	if book.Image != nil && book.Image.ID != 0 {
		book.ImageID = &book.Image.ID
	}

	var err error
	if book.ID == 0 {
		book.Status = entity.StatusActive
		err = db.Omit(clause.Associations).Create(book).Error
	} else {
		book.UpdatedAt = time.Now()
		err = db.Omit(clause.Associations).Save(book).Error
	}
	timer.Done(err)
	if err != nil {
		return translateError(err)
	}

	association := db.Model(book).Association("Categories")
	if len(book.Categories) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(book.Categories)
	}
	if err != nil {
		return fmt.Errorf("failed to save book categories: %w", err)
	}

	saved, err := r.GetByID(ctx, book.ID)
	if err != nil {
		return err
	}
	*book = *saved
	return nil
}

// Delete помечает книгу удаленной. Изображение, автор и категории остаются на месте.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, "books")

	result := conn(ctx, r.db).
		Model(&entity.Book{}).
		Scopes(activeOnly("books")).
		Where("books.id = ?", id).
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
