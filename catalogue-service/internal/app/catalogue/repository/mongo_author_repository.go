package repository

import (
	"context"
	"fmt"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type authorDocument struct {
	ID           int64     `bson:"_id"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	FirstNameKey string    `bson:"first_name_key"`
	LastNameKey  string    `bson:"last_name_key"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d authorDocument) toEntity() entity.Author {
	return entity.Author{
		Record: entity.Record{
			ID:        d.ID,
			Status:    entity.StatusActive,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
		FirstName: d.FirstName,
		LastName:  d.LastName,
	}
}

type mongoAuthorRepository struct {
	collection *mongo.Collection
	ids        sequence
}

func NewMongoAuthorRepository(db *mongo.Database) AuthorRepository {
	collection := db.Collection("authors")

	ensureIndexes(collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "first_name_key", Value: 1}, {Key: "last_name_key", Value: 1}},
		Options: options.Index().SetName("author_name_uq").SetUnique(true),
	})

	return &mongoAuthorRepository{
		collection: collection,
		ids:        newSequence(db, "authors"),
	}
}

func (r *mongoAuthorRepository) Create(ctx context.Context, author *entity.Author) error {
	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := authorDocument{
		ID:           id,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		FirstNameKey: lowerKey(author.FirstName),
		LastNameKey:  lowerKey(author.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, "authors")
	_, err = r.collection.InsertOne(ctx, doc)
	timer.Done(err)
	if err != nil {
		return translateMongoError(err, "author_name_uq")
	}

	*author = doc.toEntity()
	return nil
}

func (r *mongoAuthorRepository) GetByID(ctx context.Context, id int64) (*entity.Author, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAuthorRepository) FindByName(ctx context.Context, firstName, lastName string) (*entity.Author, error) {
	return r.findOne(ctx, bson.M{
		"first_name_key": lowerKey(firstName),
		"last_name_key":  lowerKey(lastName),
	})
}

func (r *mongoAuthorRepository) findOne(ctx context.Context, filter bson.M) (*entity.Author, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "authors")

	var doc authorDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	timer.Done(err)

	if err != nil {
		return nil, translateMongoError(err, "author_name_uq")
	}

	author := doc.toEntity()
	return &author, nil
}

func (r *mongoAuthorRepository) List(ctx context.Context, filter entity.AuthorFilter, page entity.PageRequest) (*entity.Page[entity.Author], error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "authors")

	query := bson.D{}
	if filter.FirstName != nil {
		query = append(query, bson.E{Key: "first_name_key", Value: lowerKey(*filter.FirstName)})
	}
	if filter.LastName != nil {
		query = append(query, bson.E{Key: "last_name_key", Value: lowerKey(*filter.LastName)})
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to count authors: %w", err)
	}

	opts := findPage(page).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find authors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []authorDocument
	err = cursor.All(ctx, &docs)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode authors: %w", err)
	}

	authors := make([]entity.Author, 0, len(docs))
	for _, doc := range docs {
		authors = append(authors, doc.toEntity())
	}
	return entity.NewPage(authors, page, total), nil
}

// Update меняет только документ автора; копии в книгах остаются прежними
func (r *mongoAuthorRepository) Update(ctx context.Context, author *entity.Author) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, "authors")

	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": author.ID}, bson.M{"$set": bson.M{
		"first_name":     author.FirstName,
		"last_name":      author.LastName,
		"first_name_key": lowerKey(author.FirstName),
		"last_name_key":  lowerKey(author.LastName),
		"updated_at":     now,
	}})
	timer.Done(err)

	if err != nil {
		return translateMongoError(err, "author_name_uq")
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	author.UpdatedAt = now
	return nil
}

func (r *mongoAuthorRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, "authors")

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)

	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
