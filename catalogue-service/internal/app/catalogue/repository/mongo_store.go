package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// sequence выдает числовые id документов через счетчик в коллекции counters,
// чтобы id книг совпадали по форме с нормализованным хранилищем
type sequence struct {
	counters *mongo.Collection
	name     string
}

func newSequence(db *mongo.Database, name string) sequence {
	return sequence{counters: db.Collection(countersCollection), name: name}
}

func (s sequence) next(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := s.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": s.name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", s.name, err)
	}
	return counter.Seq, nil
}

type mongoTxManager struct{}

// NewMongoTxManager возвращает менеджер транзакций денормализованного хранилища.
// Каждая запись книги здесь - один документ, поэтому отдельная транзакция не нужна:
// fn выполняется как есть.
func NewMongoTxManager() TxManager {
	return mongoTxManager{}
}

func (mongoTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ensureIndexes создает индексы коллекции; ошибка только логируется,
// индекс может уже существовать с другими опциями
func ensureIndexes(coll *mongo.Collection, models ...mongo.IndexModel) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		logger.Warn().Err(err).Str("collection", coll.Name()).Msg("failed to create indexes")
	}
}

func translateMongoError(err error, key string) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	return err
}

func lowerKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func findPage(page entity.PageRequest) *options.FindOptions {
	return options.Find().SetSkip(int64(page.Offset())).SetLimit(int64(page.Size))
}
