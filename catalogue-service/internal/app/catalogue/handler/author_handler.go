package handler

import (
	"net/http"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthorHandler struct {
	authorService service.AuthorServiceInterface
	validator     *validator.Validate
}

func NewAuthorHandler(authorService service.AuthorServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		authorService: authorService,
		validator:     validator.New(),
	}
}

func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req entity.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	author, err := h.authorService.CreateAuthor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create author")
		return
	}

	c.JSON(http.StatusOK, entity.NewAuthorResponse(*author))
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	author, err := h.authorService.GetAuthor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get author")
		return
	}

	c.JSON(http.StatusOK, entity.NewAuthorResponse(*author))
}

// ListAuthors обрабатывает GET /authors?authorName=&authorLastName=
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := entity.AuthorFilter{
		FirstName: queryString(c, "authorName"),
		LastName:  queryString(c, "authorLastName"),
	}

	authors, err := h.authorService.ListAuthors(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err, "Failed to list authors")
		return
	}

	c.JSON(http.StatusOK, entity.MapPage(authors, entity.NewAuthorResponse))
}

func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	var req entity.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	author, err := h.authorService.UpdateAuthor(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update author")
		return
	}

	c.JSON(http.StatusOK, entity.NewAuthorResponse(*author))
}

func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	if err := h.authorService.DeleteAuthor(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete author")
		return
	}

	c.Status(http.StatusNoContent)
}
