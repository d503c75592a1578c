package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validBookBody = `{
	"title": "Cien años de soledad",
	"description": "Novela",
	"isbn": "978-0307474728",
	"publishedDate": "1967-05-30T00:00:00",
	"stock": 3,
	"price": 19.90,
	"author": 1,
	"urlImage": "https://img.example/cien.png",
	"category": [1, 2],
	"visibility": true
}`

type envelope struct {
	Status     int             `json:"status"`
	StatusText string          `json:"statusText"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type testServices struct {
	books      *MockBookService
	authors    *MockAuthorService
	categories *MockCategoryService
}

func setupTestRouter() (*gin.Engine, *testServices) {
	gin.SetMode(gin.TestMode)

	s := &testServices{
		books:      new(MockBookService),
		authors:    new(MockAuthorService),
		categories: new(MockCategoryService),
	}
	router := SetupRoutes(
		NewBookHandler(s.books),
		NewAuthorHandler(s.authors),
		NewCategoryHandler(s.categories),
		[]string{"*"},
	)
	return router, s
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func sampleBook() *entity.Book {
	rating := 4.5
	book := &entity.Book{
		Title:         "Cien años de soledad",
		Description:   "Novela",
		ISBN:          "978-0307474728",
		PublishedDate: time.Date(1967, 5, 30, 0, 0, 0, 0, time.UTC),
		Stock:         3,
		Price:         decimal.RequireFromString("19.90"),
		Rating:        &rating,
		Visibility:    true,
		Author:        entity.Author{FirstName: "Gabriel", LastName: "Garcia Marquez"},
		Image:         &entity.Image{URL: "https://img.example/cien.png"},
		Categories:    []entity.Category{{Name: "Novela"}},
	}
	book.ID = 7
	book.Author.ID = 1
	book.Categories[0].ID = 1
	return book
}

func TestCreateBookHandler_Success(t *testing.T) {
	router, s := setupTestRouter()

	s.books.On("CreateBook", mock.Anything, mock.MatchedBy(func(req *entity.BookRequest) bool {
		return req.Title == "Cien años de soledad" &&
			req.Author.ID != nil && *req.Author.ID == 1 &&
			len(req.Category) == 2 &&
			req.Price.Equal(decimal.RequireFromString("19.9"))
	})).Return(sampleBook(), nil)

	w := perform(router, http.MethodPost, "/books", validBookBody)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, "OK", env.StatusText)
	assert.Equal(t, "Libro creado", env.Message)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "1967-05-30T00:00:00", data["publishedDate"])
	assert.Equal(t, "https://img.example/cien.png", data["image"])
	s.books.AssertExpectations(t)
}

func TestCreateBookHandler_ValidationError(t *testing.T) {
	router, s := setupTestRouter()

	w := perform(router, http.MethodPost, "/books", `{"description": "sin titulo"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Bad Request", env.StatusText)
	assert.Equal(t, "Title is required", env.Message)
	assert.JSONEq(t, "null", string(env.Data))
	s.books.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything)
}

func TestCreateBookHandler_InvalidBody(t *testing.T) {
	router, _ := setupTestRouter()

	w := perform(router, http.MethodPost, "/books", `{"title": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decodeEnvelope(t, w).Message)
}

func TestCreateBookHandler_CallerError(t *testing.T) {
	router, s := setupTestRouter()

	s.books.On("CreateBook", mock.Anything, mock.Anything).
		Return(nil, &service.Error{Kind: service.ErrAlreadyExists, Message: "El libro ya se encuentra registrado"})

	w := perform(router, http.MethodPost, "/books", validBookBody)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusBadRequest, env.Status)
	assert.Equal(t, "El libro ya se encuentra registrado", env.Message)
	assert.JSONEq(t, "null", string(env.Data))
}

func TestGetBookHandler(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		setup       func(s *MockBookService)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "found",
			path: "/books/7",
			setup: func(s *MockBookService) {
				s.On("GetBook", mock.Anything, int64(7)).Return(sampleBook(), nil)
			},
			wantStatus:  http.StatusOK,
			wantMessage: "Resultado del libro",
		},
		{
			name:        "invalid id",
			path:        "/books/abc",
			setup:       func(s *MockBookService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid book ID",
		},
		{
			name: "not found is a caller error",
			path: "/books/99",
			setup: func(s *MockBookService) {
				s.On("GetBook", mock.Anything, int64(99)).
					Return(nil, &service.Error{Kind: service.ErrNotFound, Message: "Libro no encontrado"})
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Libro no encontrado",
		},
		{
			name: "storage failure is hidden",
			path: "/books/5",
			setup: func(s *MockBookService) {
				s.On("GetBook", mock.Anything, int64(5)).Return(nil, errors.New("connection reset"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to get book",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s := setupTestRouter()
			tt.setup(s.books)

			w := perform(router, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMessage, decodeEnvelope(t, w).Message)
		})
	}
}

func TestListBooksHandler_PassesFiltersAndPage(t *testing.T) {
	router, s := setupTestRouter()

	page := entity.NewPage([]entity.Book{*sampleBook()}, entity.NewPageRequest(1, 5), 6)
	s.books.On("ListBooks", mock.Anything, mock.MatchedBy(func(f entity.BookFilter) bool {
		return f.Title != nil && *f.Title == "soledad" &&
			f.AuthorID != nil && *f.AuthorID == 1 &&
			f.Visibility != nil && *f.Visibility &&
			f.PublishedDate != nil && f.PublishedDate.Equal(time.Date(1967, 5, 30, 0, 0, 0, 0, time.UTC)) &&
			f.ISBN == nil && f.CategoryName == nil
	}), entity.NewPageRequest(1, 5)).Return(page, nil)

	w := perform(router, http.MethodGet, "/books?title=soledad&authorId=1&visibility=true&publishedDate=1967-05-30T00:00:00&isbn=&page=1&size=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Resultado del libro", env.Message)

	var data struct {
		Content       []map[string]interface{} `json:"content"`
		Page          int                      `json:"page"`
		Size          int                      `json:"size"`
		TotalElements int64                    `json:"totalElements"`
		TotalPages    int                      `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Content, 1)
	assert.Equal(t, 1, data.Page)
	assert.Equal(t, 5, data.Size)
	assert.Equal(t, int64(6), data.TotalElements)
	assert.Equal(t, 2, data.TotalPages)
	s.books.AssertExpectations(t)
}

func TestListBooksHandler_DefaultPage(t *testing.T) {
	router, s := setupTestRouter()

	s.books.On("ListBooks", mock.Anything, entity.BookFilter{}, entity.NewPageRequest(0, 10)).
		Return(entity.NewPage[entity.Book](nil, entity.NewPageRequest(0, 10), 0), nil)

	w := perform(router, http.MethodGet, "/books", "")

	assert.Equal(t, http.StatusOK, w.Code)
	s.books.AssertExpectations(t)
}

func TestListBooksHandler_HugePageIsClamped(t *testing.T) {
	router, s := setupTestRouter()

	want := entity.PageRequest{Page: math.MaxInt / 100, Size: 100}
	s.books.On("ListBooks", mock.Anything, entity.BookFilter{}, want).
		Return(entity.NewPage[entity.Book](nil, want, 0), nil)

	w := perform(router, http.MethodGet, "/books?page=92233720368547759&size=100", "")

	assert.Equal(t, http.StatusOK, w.Code)
	s.books.AssertExpectations(t)
}

func TestListBooksHandler_InvalidQuery(t *testing.T) {
	for _, query := range []string{"rating=high", "authorId=x", "visibility=maybe", "publishedDate=yesterday", "page=first"} {
		t.Run(query, func(t *testing.T) {
			router, s := setupTestRouter()

			w := perform(router, http.MethodGet, "/books?"+query, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeEnvelope(t, w).Message, "Invalid query parameter")
			s.books.AssertNotCalled(t, "ListBooks", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateBookHandler_Success(t *testing.T) {
	router, s := setupTestRouter()

	s.books.On("UpdateBook", mock.Anything, int64(7), mock.AnythingOfType("*entity.BookRequest")).Return(sampleBook(), nil)

	w := perform(router, http.MethodPut, "/books/7", validBookBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Libro actualizado correctamente", decodeEnvelope(t, w).Message)
}

func TestPatchBookHandler_DistinguishesEmptyAndAbsentCategories(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantCount int
	}{
		{name: "empty list clears", body: `{"category": []}`, wantSet: true, wantCount: 0},
		{name: "absent keeps", body: `{"title": "Otro"}`, wantSet: false},
		{name: "null keeps", body: `{"category": null}`, wantSet: false},
		{name: "ids replace", body: `{"category": [3, 4]}`, wantSet: true, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s := setupTestRouter()

			var got *entity.BookPatch
			s.books.On("PatchBook", mock.Anything, int64(7), mock.AnythingOfType("*entity.BookPatch")).
				Run(func(args mock.Arguments) { got = args.Get(2).(*entity.BookPatch) }).
				Return(sampleBook(), nil)

			w := perform(router, http.MethodPatch, "/books/7", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Libro actualizado correctamente", decodeEnvelope(t, w).Message)

			refs, set := got.Category.Get()
			assert.Equal(t, tt.wantSet, set)
			if tt.wantSet {
				assert.Len(t, refs, tt.wantCount)
			}
		})
	}
}

func TestPatchBookHandler_ImageMissing(t *testing.T) {
	router, s := setupTestRouter()

	s.books.On("PatchBook", mock.Anything, int64(7), mock.Anything).
		Return(nil, &service.Error{Kind: service.ErrNotFound, Message: "No se encontro la imagen a actualizar"})

	w := perform(router, http.MethodPatch, "/books/7", `{"urlImage": "https://img.example/new.png"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No se encontro la imagen a actualizar", decodeEnvelope(t, w).Message)
}

func TestDeleteBookHandler(t *testing.T) {
	router, s := setupTestRouter()

	s.books.On("DeleteBook", mock.Anything, int64(7)).Return(nil).Once()
	s.books.On("DeleteBook", mock.Anything, int64(7)).
		Return(&service.Error{Kind: service.ErrNotFound, Message: "Libro no encontrado"}).Once()

	first := perform(router, http.MethodDelete, "/books/7", "")
	assert.Equal(t, http.StatusOK, first.Code)
	env := decodeEnvelope(t, first)
	assert.Equal(t, "Libro eliminado correctamente", env.Message)
	assert.JSONEq(t, "null", string(env.Data))

	second := perform(router, http.MethodDelete, "/books/7", "")
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, "Libro no encontrado", decodeEnvelope(t, second).Message)
}
