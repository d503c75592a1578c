package util

import (
	"context"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
)

// CategoryCache хранит полный список категорий для GET /categories/all.
// GetCategories возвращает nil без ошибки, если в кеше ничего нет.
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher отправляет события о книгах в брокер
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
