// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pantrytrack/backend/internal/api/handlers"
	"github.com/pantrytrack/backend/internal/api/middleware"
	"github.com/pantrytrack/backend/internal/service"
	"github.com/pantrytrack/backend/internal/storage"
)

type Services struct {
	ProductService  *service.ProductService
	ForecastService *service.ForecastService
	ImageStore      storage.ObjectStorage
	UploadDir       string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ProductService != nil {
			productHandler := handlers.NewProductHandler(services.ProductService, services.ImageStore, services.UploadDir)
			productGroup := apiGroup.Group("/products")
			{
				productGroup.POST("", productHandler.CreateProduct)
				productGroup.GET("", productHandler.ListProducts)
				productGroup.GET("/:name", productHandler.GetProduct)
				productGroup.DELETE("/:name", productHandler.DeleteProduct)
				productGroup.POST("/:name/stock/increment", productHandler.IncrementStock)
				productGroup.PUT("/:name/stock", productHandler.SetStock)
				productGroup.POST("/:name/price/increment", productHandler.IncrementPrice)
				productGroup.POST("/:name/ideal_stock/increment", productHandler.IncrementIdealStock)
				productGroup.PUT("/:name/ideal_stock", productHandler.SetIdealStock)
				productGroup.POST("/:name/image", productHandler.UploadImage)
			}
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.GET("/products/:name/history", forecastHandler.GetHistory)
				analyticsGroup.GET("/products/:name/usage", forecastHandler.GetUsage)
				analyticsGroup.GET("/products/:name/forecast", forecastHandler.GetForecast)
				analyticsGroup.GET("/ranking", forecastHandler.GetRanking)
				analyticsGroup.POST("/refresh", forecastHandler.RefreshForecasts)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
