package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleAuthor() *entity.Author {
	author := &entity.Author{FirstName: "Nicolas", LastName: "Valencia"}
	author.ID = 10
	return author
}

func TestCreateAuthorHandler_Success(t *testing.T) {
	router, s := setupTestRouter()

	s.authors.On("CreateAuthor", mock.Anything, &entity.AuthorRequest{Name: "Nicolas", LastName: "Valencia"}).
		Return(sampleAuthor(), nil)

	w := perform(router, http.MethodPost, "/authors", `{"name": "Nicolas", "lastName": "Valencia"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 10, "firstName": "Nicolas", "lastName": "Valencia"}`, w.Body.String())
}

func TestCreateAuthorHandler_Duplicate(t *testing.T) {
	router, s := setupTestRouter()

	s.authors.On("CreateAuthor", mock.Anything, mock.Anything).
		Return(nil, &service.Error{Kind: service.ErrAlreadyExists, Message: "El autor ya se encuentra registrado"})

	w := perform(router, http.MethodPost, "/authors", `{"name": "nicolas", "lastName": "VALENCIA"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "El autor ya se encuentra registrado"}`, w.Body.String())
}

func TestCreateAuthorHandler_ValidationError(t *testing.T) {
	router, s := setupTestRouter()

	w := perform(router, http.MethodPost, "/authors", `{"name": "Nicolas"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "LastName is required"}`, w.Body.String())
	s.authors.AssertNotCalled(t, "CreateAuthor", mock.Anything, mock.Anything)
}

func TestGetAuthorHandler_NotFound(t *testing.T) {
	router, s := setupTestRouter()

	s.authors.On("GetAuthor", mock.Anything, int64(404)).
		Return(nil, &service.Error{Kind: service.ErrNotFound, Message: "El autor no se encuentra registrado"})

	w := perform(router, http.MethodGet, "/authors/404", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "El autor no se encuentra registrado"}`, w.Body.String())
}

func TestListAuthorsHandler_PassesNameFilter(t *testing.T) {
	router, s := setupTestRouter()

	req := entity.NewPageRequest(0, 20)
	s.authors.On("ListAuthors", mock.Anything, mock.MatchedBy(func(f entity.AuthorFilter) bool {
		return f.FirstName != nil && *f.FirstName == "Nicolas" && f.LastName == nil
	}), req).Return(entity.NewPage([]entity.Author{*sampleAuthor()}, req, 1), nil)

	w := perform(router, http.MethodGet, "/authors?authorName=Nicolas&size=20", "")

	require.Equal(t, http.StatusOK, w.Code)
	var page entity.Page[entity.AuthorResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Valencia", page.Content[0].LastName)
	s.authors.AssertExpectations(t)
}

func TestUpdateAuthorHandler_StorageFailure(t *testing.T) {
	router, s := setupTestRouter()

	s.authors.On("UpdateAuthor", mock.Anything, int64(10), mock.Anything).Return(nil, errors.New("deadlock"))

	w := perform(router, http.MethodPut, "/authors/10", `{"name": "Nicolas", "lastName": "Valencia"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Failed to update author"}`, w.Body.String())
}

func TestDeleteAuthorHandler(t *testing.T) {
	router, s := setupTestRouter()

	s.authors.On("DeleteAuthor", mock.Anything, int64(10)).Return(nil)

	w := perform(router, http.MethodDelete, "/authors/10", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDeleteAuthorHandler_InvalidID(t *testing.T) {
	router, _ := setupTestRouter()

	w := perform(router, http.MethodDelete, "/authors/-1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Invalid author ID"}`, w.Body.String())
}
