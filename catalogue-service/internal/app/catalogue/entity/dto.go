package entity

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// MaxPrice - наибольшая цена, которую вмещает столбец NUMERIC(12,2)
var MaxPrice = decimal.RequireFromString("9999999999.99")

func init() {
	// цена в JSON - число, а не строка
	decimal.MarshalJSONWithoutQuotes = true
}

// BookRequest - тело POST /books и PUT /books/:id
type BookRequest struct {
	Title         string           `json:"title" validate:"required,max=255"`
	Description   string           `json:"description" validate:"required"`
	ISBN          string           `json:"isbn" validate:"required,max=64"`
	PublishedDate *DateTime        `json:"publishedDate" validate:"required"`
	Stock         *int             `json:"stock" validate:"required,gte=0"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	Rating        *float64         `json:"rating" validate:"omitempty,gte=0"`
	Author        AuthorRef        `json:"author"`
	URLImage      string           `json:"urlImage" validate:"required"`
	Category      []CategoryRef    `json:"category"`
	Visibility    *bool            `json:"visibility" validate:"required"`
}

// BookPatch - тело PATCH /books/:id; применяются только переданные поля
type BookPatch struct {
	Title         Optional[string]          `json:"title"`
	Description   Optional[string]          `json:"description"`
	ISBN          Optional[string]          `json:"isbn"`
	PublishedDate Optional[DateTime]        `json:"publishedDate"`
	Stock         Optional[int]             `json:"stock"`
	Price         Optional[decimal.Decimal] `json:"price"`
	Rating        Optional[float64]         `json:"rating"`
	Author        Optional[AuthorRef]       `json:"author"`
	URLImage      Optional[string]          `json:"urlImage"`
	Category      Optional[[]CategoryRef]   `json:"category"`
	Visibility    Optional[bool]            `json:"visibility"`
}

type AuthorRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	LastName string `json:"lastName" validate:"required,max=255"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type AuthorResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func NewAuthorResponse(a Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName}
}

type CategoryResponse struct {
	ID           int64  `json:"id"`
	CategoryName string `json:"categoryName"`
}

func NewCategoryResponse(c Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, CategoryName: c.Name}
}

func NewCategoryResponses(categories []Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

type BookResponse struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	PublishedDate DateTime           `json:"publishedDate"`
	Stock         int                `json:"stock"`
	Price         decimal.Decimal    `json:"price"`
	Rating        *float64           `json:"rating"`
	Author        AuthorResponse     `json:"author"`
	Image         string             `json:"image"`
	Category      []CategoryResponse `json:"category"`
	ISBN          string             `json:"isbn"`
	Visibility    bool               `json:"visibility"`
}

func NewBookResponse(b Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		PublishedDate: NewDateTime(b.PublishedDate),
		Stock:         b.Stock,
		Price:         b.Price,
		Rating:        b.Rating,
		Author:        NewAuthorResponse(b.Author),
		Image:         b.ImageURL(),
		Category:      NewCategoryResponses(b.Categories),
		ISBN:          b.ISBN,
		Visibility:    b.Visibility,
	}
}

// GeneralResponse - конверт ответов по книгам
type GeneralResponse struct {
	Status     int         `json:"status"`
	StatusText string      `json:"statusText"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

func NewGeneralResponse(status int, message string, data interface{}) GeneralResponse {
	return GeneralResponse{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
		Data:       data,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Типы событий о книгах в Kafka
const (
	EventBookCreated = "BOOK_CREATED"
	EventBookUpdated = "BOOK_UPDATED"
	EventBookDeleted = "BOOK_DELETED"
)

// BookEvent публикуется в топик book_events после фиксации транзакции
type BookEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	BookID      int64           `json:"book_id"`
	ISBN        string          `json:"isbn,omitempty"`
	Title       string          `json:"title,omitempty"`
	AuthorID    int64           `json:"author_id,omitempty"`
	CategoryIDs []int64         `json:"category_ids"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Visibility  bool            `json:"visibility"`
	Timestamp   time.Time       `json:"timestamp"`
}
