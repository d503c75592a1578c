package entity

import (
	"math"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// BookFilter - набор необязательных условий выборки книг.
// Незаданное поле не участвует в запросе; заданные объединяются через AND.
type BookFilter struct {
	Title          *string
	AuthorID       *int64
	AuthorName     *string
	AuthorLastName *string
	PublishedDate  *time.Time
	CategoryID     *int64
	CategoryName   *string
	ISBN           *string
	Rating         *float64
	Visibility     *bool
}

// AuthorFilter - фильтр списка авторов по имени и фамилии
type AuthorFilter struct {
	FirstName *string
	LastName  *string
}

// PageRequest - номер страницы с нуля и размер страницы
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest нормализует номер и размер страницы
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// смещение page*size должно помещаться в int
	if maxPage := math.MaxInt / size; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Size: size}
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page - одна страница выборки вместе с общим количеством элементов
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// MapPage преобразует содержимое страницы, сохраняя пагинацию
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	content := make([]R, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, fn(item))
	}
	return &Page[R]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
