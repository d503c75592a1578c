package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"relatos/pkg/logger"
	"relatos/pkg/metrics"
)

const serviceName = "catalogue-service"

// SetupRoutes настраивает все маршруты каталога
func SetupRoutes(books *BookHandler, authors *AuthorHandler, categories *CategoryHandler, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bookRoutes := router.Group("/books")
	{
		bookRoutes.POST("", books.CreateBook)
		bookRoutes.GET("", books.ListBooks)
		bookRoutes.GET("/:id", books.GetBook)
		bookRoutes.PUT("/:id", books.UpdateBook)
		bookRoutes.PATCH("/:id", books.PatchBook)
		bookRoutes.DELETE("/:id", books.DeleteBook)
	}

	authorRoutes := router.Group("/authors")
	{
		authorRoutes.POST("", authors.CreateAuthor)
		authorRoutes.GET("", authors.ListAuthors)
		authorRoutes.GET("/:id", authors.GetAuthor)
		authorRoutes.PUT("/:id", authors.UpdateAuthor)
		authorRoutes.DELETE("/:id", authors.DeleteAuthor)
	}

	categoryRoutes := router.Group("/categories")
	{
		categoryRoutes.POST("", categories.CreateCategory)
		categoryRoutes.GET("", categories.ListCategories)
		categoryRoutes.GET("/all", categories.GetAllCategories)
		categoryRoutes.GET("/:id", categories.GetCategory)
		categoryRoutes.PUT("/:id", categories.UpdateCategory)
		categoryRoutes.DELETE("/:id", categories.DeleteCategory)
	}

	return router
}

// corsConfig: "*" разрешает любой источник, но без передачи учетных данных
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        300,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true
	return cfg
}
