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

type categoryDocument struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	NameKey   string    `bson:"name_key"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d categoryDocument) toEntity() entity.Category {
	return entity.Category{
		Record: entity.Record{
			ID:        d.ID,
			Status:    entity.StatusActive,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
		Name: d.Name,
	}
}

type mongoCategoryRepository struct {
	collection *mongo.Collection
	ids        sequence
}

func NewMongoCategoryRepository(db *mongo.Database) CategoryRepository {
	collection := db.Collection("categories")

	ensureIndexes(collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_key", Value: 1}},
		Options: options.Index().SetName("category_name_uq").SetUnique(true),
	})

	return &mongoCategoryRepository{
		collection: collection,
		ids:        newSequence(db, "categories"),
	}
}

func (r *mongoCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := categoryDocument{
		ID:        id,
		Name:      category.Name,
		NameKey:   lowerKey(category.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, "categories")
	_, err = r.collection.InsertOne(ctx, doc)
	timer.Done(err)
	if err != nil {
		return translateMongoError(err, "category_name_uq")
	}

	*category = doc.toEntity()
	return nil
}

func (r *mongoCategoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"name_key": lowerKey(name)})
}

func (r *mongoCategoryRepository) findOne(ctx context.Context, filter bson.M) (*entity.Category, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	var doc categoryDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	timer.Done(err)

	if err != nil {
		return nil, translateMongoError(err, "category_name_uq")
	}

	category := doc.toEntity()
	return &category, nil
}

func (r *mongoCategoryRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.Category, error) {
	if len(ids) == 0 {
		return []entity.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *mongoCategoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}}))
}

func (r *mongoCategoryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Category, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, "categories")

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDocument
	err = cursor.All(ctx, &docs)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]entity.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, doc.toEntity())
	}
	return categories, nil
}

func (r *mongoCategoryRepository) List(ctx context.Context, page entity.PageRequest) (*entity.Page[entity.Category], error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	categories, err := r.find(ctx, bson.M{}, findPage(page).SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return entity.NewPage(categories, page, total), nil
}

func (r *mongoCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, "categories")

	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, bson.M{"$set": bson.M{
		"name":       category.Name,
		"name_key":   lowerKey(category.Name),
		"updated_at": now,
	}})
	timer.Done(err)

	if err != nil {
		return translateMongoError(err, "category_name_uq")
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	category.UpdatedAt = now
	return nil
}

func (r *mongoCategoryRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, "categories")

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)

	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
