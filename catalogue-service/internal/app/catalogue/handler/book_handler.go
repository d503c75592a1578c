package handler

import (
	"net/http"
	"strconv"
	"strings"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgBookCreated = "Libro creado"
	msgBookResult  = "Resultado del libro"
	msgBookUpdated = "Libro actualizado correctamente"
	msgBookDeleted = "Libro eliminado correctamente"
)

// BookHandler обрабатывает /books. Все ответы, включая ошибки, идут в конверте.
type BookHandler struct {
	bookService service.BookServiceInterface
	validator   *validator.Validate
}

func NewBookHandler(bookService service.BookServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		validator:   validator.New(),
	}
}

// CreateBook обрабатывает POST /books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req entity.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondEnvelope(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondEnvelope(c, http.StatusBadRequest, formatValidationError(err), nil)
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), &req)
	if err != nil {
		respondBookError(c, err, "Failed to create book")
		return
	}

	respondEnvelope(c, http.StatusOK, msgBookCreated, entity.NewBookResponse(*book))
}

// GetBook обрабатывает GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondEnvelope(c, http.StatusBadRequest, "Invalid book ID", nil)
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		respondBookError(c, err, "Failed to get book")
		return
	}

	respondEnvelope(c, http.StatusOK, msgBookResult, entity.NewBookResponse(*book))
}

// ListBooks обрабатывает GET /books с фильтрами и пагинацией
func (h *BookHandler) ListBooks(c *gin.Context) {
	filter, err := parseBookFilter(c)
	if err != nil {
		respondEnvelope(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		respondEnvelope(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	books, err := h.bookService.ListBooks(c.Request.Context(), filter, page)
	if err != nil {
		respondBookError(c, err, "Failed to list books")
		return
	}

	respondEnvelope(c, http.StatusOK, msgBookResult, entity.MapPage(books, entity.NewBookResponse))
}

// UpdateBook обрабатывает PUT /books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondEnvelope(c, http.StatusBadRequest, "Invalid book ID", nil)
		return
	}

	var req entity.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondEnvelope(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondEnvelope(c, http.StatusBadRequest, formatValidationError(err), nil)
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), id, &req)
	if err != nil {
		respondBookError(c, err, "Failed to update book")
		return
	}

	respondEnvelope(c, http.StatusOK, msgBookUpdated, entity.NewBookResponse(*book))
}

// PatchBook обрабатывает PATCH /books/:id; меняются только переданные поля
func (h *BookHandler) PatchBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondEnvelope(c, http.StatusBadRequest, "Invalid book ID", nil)
		return
	}

	var patch entity.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondEnvelope(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	book, err := h.bookService.PatchBook(c.Request.Context(), id, &patch)
	if err != nil {
		respondBookError(c, err, "Failed to update book")
		return
	}

	respondEnvelope(c, http.StatusOK, msgBookUpdated, entity.NewBookResponse(*book))
}

// DeleteBook обрабатывает DELETE /books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondEnvelope(c, http.StatusBadRequest, "Invalid book ID", nil)
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		respondBookError(c, err, "Failed to delete book")
		return
	}

	respondEnvelope(c, http.StatusOK, msgBookDeleted, nil)
}

// parseBookFilter собирает фильтр из строки запроса.
// Пустые параметры не участвуют в выборке.
func parseBookFilter(c *gin.Context) (entity.BookFilter, error) {
	var f entity.BookFilter

	f.Title = queryString(c, "title")
	f.AuthorName = queryString(c, "authorName")
	f.AuthorLastName = queryString(c, "authorLastName")
	f.CategoryName = queryString(c, "categoryName")
	f.ISBN = queryString(c, "isbn")

	if raw := queryString(c, "authorId"); raw != nil {
		v, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			return f, &queryError{name: "authorId"}
		}
		f.AuthorID = &v
	}
	if raw := queryString(c, "categoryId"); raw != nil {
		v, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			return f, &queryError{name: "categoryId"}
		}
		f.CategoryID = &v
	}
	if raw := queryString(c, "publishedDate"); raw != nil {
		v, err := entity.ParseDateTime(*raw)
		if err != nil {
			return f, &queryError{name: "publishedDate"}
		}
		f.PublishedDate = &v
	}
	if raw := queryString(c, "rating"); raw != nil {
		v, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			return f, &queryError{name: "rating"}
		}
		f.Rating = &v
	}
	if raw := queryString(c, "visibility"); raw != nil {
		v, err := strconv.ParseBool(*raw)
		if err != nil {
			return f, &queryError{name: "visibility"}
		}
		f.Visibility = &v
	}

	return f, nil
}

func queryString(c *gin.Context, name string) *string {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	return &v
}
