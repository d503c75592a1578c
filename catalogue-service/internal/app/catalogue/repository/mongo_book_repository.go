package repository

import (
	"context"
	"fmt"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bookDocument - книга вместе с копиями автора и категорий
type bookDocument struct {
	ID            int64                `bson:"_id"`
	Title         string               `bson:"title"`
	Description   string               `bson:"description"`
	ISBN          string               `bson:"isbn"`
	ISBNKey       string               `bson:"isbn_key"`
	PublishedDate time.Time            `bson:"published_date"`
	Stock         int                  `bson:"stock"`
	Price         primitive.Decimal128 `bson:"price"`
	Rating        *float64             `bson:"rating,omitempty"`
	Visibility    bool                 `bson:"visibility"`
	Author        authorEmbed          `bson:"author"`
	Categories    []categoryEmbed      `bson:"categories"`
	ImageURL      string               `bson:"image_url"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

type authorEmbed struct {
	ID        int64  `bson:"id,omitempty"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
}

type categoryEmbed struct {
	ID   int64  `bson:"id,omitempty"`
	Name string `bson:"name"`
}

type mongoBookRepository struct {
	collection *mongo.Collection
	ids        sequence
}

// NewMongoBookRepository создает денормализованное хранилище книг.
// Удаление жесткое: документ удаляется из коллекции.
func NewMongoBookRepository(db *mongo.Database) BookRepository {
	collection := db.Collection("books")

	ensureIndexes(collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "isbn_key", Value: 1}},
			Options: options.Index().SetName("isbn_key_uq").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "title", Value: "text"}},
			Options: options.Index().SetName("title_text"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "author.first_name", Value: 1}, {Key: "author.last_name", Value: 1}},
			Options: options.Index().SetName("author_name_idx"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "categories.name", Value: 1}},
			Options: options.Index().SetName("category_name_idx"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	)

	return &mongoBookRepository{
		collection: collection,
		ids:        newSequence(db, "books"),
	}
}

func (r *mongoBookRepository) GetByID(ctx context.Context, id int64) (*entity.Book, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoBookRepository) FindByISBN(ctx context.Context, isbn string) (*entity.Book, error) {
	return r.findOne(ctx, bson.M{"isbn_key": lowerKey(isbn)})
}

func (r *mongoBookRepository) findOne(ctx context.Context, filter bson.M) (*entity.Book, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "books")

	var doc bookDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	timer.Done(err)

	if err != nil {
		return nil, translateMongoError(err, "isbn_key_uq")
	}

	book := doc.toEntity()
	return &book, nil
}

// List без фильтров возвращает все документы; при поиске по названию
// результаты упорядочены по релевантности текстового индекса
func (r *mongoBookRepository) List(ctx context.Context, filter entity.BookFilter, page entity.PageRequest) (*entity.Page[entity.Book], error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "books")

	query := bookFilterDocument(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	opts := findPage(page)
	if filter.Title != nil {
		score := bson.M{"$meta": "textScore"}
		opts.SetProjection(bson.M{"score": score}).SetSort(bson.D{{Key: "score", Value: score}})
	} else {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookDocument
	err = cursor.All(ctx, &docs)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]entity.Book, 0, len(docs))
	for _, doc := range docs {
		books = append(books, doc.toEntity())
	}
	return entity.NewPage(books, page, total), nil
}

// bookFilterDocument собирает фильтр как список условий верхнего уровня,
// которые MongoDB объединяет через AND; пустой фильтр совпадает со всеми документами
func bookFilterDocument(f entity.BookFilter) bson.D {
	filter := bson.D{}

	if f.Title != nil {
		filter = append(filter, bson.E{Key: "$text", Value: bson.M{"$search": *f.Title}})
	}
	if f.ISBN != nil {
		filter = append(filter, bson.E{Key: "isbn_key", Value: lowerKey(*f.ISBN)})
	}
	if f.AuthorID != nil {
		filter = append(filter, bson.E{Key: "author.id", Value: *f.AuthorID})
	}
	if f.AuthorName != nil {
		filter = append(filter, bson.E{Key: "author.first_name", Value: *f.AuthorName})
	}
	if f.AuthorLastName != nil {
		filter = append(filter, bson.E{Key: "author.last_name", Value: *f.AuthorLastName})
	}
	if f.CategoryID != nil {
		filter = append(filter, bson.E{Key: "categories.id", Value: *f.CategoryID})
	}
	if f.CategoryName != nil {
		filter = append(filter, bson.E{Key: "categories.name", Value: *f.CategoryName})
	}
	if f.PublishedDate != nil {
		filter = append(filter, bson.E{Key: "published_date", Value: f.PublishedDate.UTC()})
	}
	if f.Visibility != nil {
		filter = append(filter, bson.E{Key: "visibility", Value: *f.Visibility})
	}
	if f.Rating != nil {
		filter = append(filter, bson.E{Key: "rating", Value: *f.Rating})
	}

	return filter
}

func (r *mongoBookRepository) Save(ctx context.Context, book *entity.Book) error {
	now := time.Now().UTC()
	insert := book.ID == 0

	op := metrics.DbOpUpdate
	if insert {
		op = metrics.DbOpInsert
		id, err := r.ids.next(ctx)
		if err != nil {
			return err
		}
		book.ID = id
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	doc, err := newBookDocument(book)
	if err != nil {
		return err
	}

	timer := metrics.NewDbTimer(metricsService, op, "books")
	if insert {
		_, err = r.collection.InsertOne(ctx, doc)
		timer.Done(err)
		if err != nil {
			book.ID = 0
			return translateMongoError(err, "isbn_key_uq")
		}
		return nil
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": book.ID}, doc)
	timer.Done(err)
	if err != nil {
		return translateMongoError(err, "isbn_key_uq")
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, "books")

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)

	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func newBookDocument(b *entity.Book) (bookDocument, error) {
	price, err := primitive.ParseDecimal128(b.Price.String())
	if err != nil {
		return bookDocument{}, fmt.Errorf("invalid price %s: %w", b.Price, err)
	}

	categories := make([]categoryEmbed, 0, len(b.Categories))
	for _, c := range b.Categories {
		categories = append(categories, categoryEmbed{ID: c.ID, Name: c.Name})
	}

	return bookDocument{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		ISBN:          b.ISBN,
		ISBNKey:       lowerKey(b.ISBN),
		PublishedDate: b.PublishedDate.UTC(),
		Stock:         b.Stock,
		Price:         price,
		Rating:        b.Rating,
		Visibility:    b.Visibility,
		Author: authorEmbed{
			ID:        b.Author.ID,
			FirstName: b.Author.FirstName,
			LastName:  b.Author.LastName,
		},
		Categories: categories,
		ImageURL:   b.ImageURL(),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}, nil
}

func (d bookDocument) toEntity() entity.Book {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		price = decimal.Zero
	}

	categories := make([]entity.Category, 0, len(d.Categories))
	for _, c := range d.Categories {
		categories = append(categories, entity.Category{Record: entity.Record{ID: c.ID}, Name: c.Name})
	}

	return entity.Book{
		Record: entity.Record{
			ID:        d.ID,
			Status:    entity.StatusActive,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
		Title:         d.Title,
		Description:   d.Description,
		ISBN:          d.ISBN,
		PublishedDate: d.PublishedDate,
		Stock:         d.Stock,
		Price:         price,
		Rating:        d.Rating,
		Visibility:    d.Visibility,
		AuthorID:      d.Author.ID,
		Author: entity.Author{
			Record:    entity.Record{ID: d.Author.ID},
			FirstName: d.Author.FirstName,
			LastName:  d.Author.LastName,
		},
		Image:      &entity.Image{URL: d.ImageURL},
		Categories: categories,
	}
}
