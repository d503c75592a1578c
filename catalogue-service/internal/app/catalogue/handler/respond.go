package handler

import (
	"net/http"
	"strconv"

	"relatos/catalogue-service/internal/app/catalogue/entity"
	"relatos/catalogue-service/internal/app/catalogue/service"
	"relatos/pkg/logger"
	"relatos/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondEnvelope отвечает в конверте {status, statusText, message, data}
func respondEnvelope(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, entity.NewGeneralResponse(status, message, data))
}

// respondBookError: ошибки запроса уходят с кодом 400 и текстом сервиса,
// остальные логируются и скрываются за общим сообщением
func respondBookError(c *gin.Context, err error, fallback string) {
	if service.IsCallerError(err) {
		metrics.RecordCallerError(service.KindOf(err))
		respondEnvelope(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	logger.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
	respondEnvelope(c, http.StatusInternalServerError, fallback, nil)
}

// respondError - то же для авторов и категорий, в виде {"error": ...}
func respondError(c *gin.Context, err error, fallback string) {
	if service.IsCallerError(err) {
		metrics.RecordCallerError(service.KindOf(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePage читает page и size; отсутствующие параметры берутся по умолчанию
func parsePage(c *gin.Context) (entity.PageRequest, error) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return entity.PageRequest{}, err
	}
	size, err := queryInt(c, "size", entity.DefaultPageSize)
	if err != nil {
		return entity.PageRequest{}, err
	}
	return entity.NewPageRequest(page, size), nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &queryError{name: name}
	}
	return v, nil
}

type queryError struct {
	name string
}

func (e *queryError) Error() string {
	return "Invalid query parameter: " + e.name
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
