// internal/api/handlers/forecast_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/service"
	"github.com/rs/zerolog/log"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// GetHistory returns the product's snapshot log, newest first, after
// the noise filter has run.
func (h *ForecastHandler) GetHistory(c *gin.Context) {
	snapshots, err := h.service.History(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots, "total": len(snapshots)})
}

// GetUsage returns the product's estimated daily consumption. A null
// usage_per_day means there is not enough usable history.
func (h *ForecastHandler) GetUsage(c *gin.Context) {
	usage, err := h.service.UsagePerDay(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": c.Param("name"), "usage_per_day": usage})
}

// GetForecast returns the product's depletion forecast. A null
// days_left means the product is not measurably depleting.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	days, err := h.service.DaysUntilOut(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": c.Param("name"), "days_left": days})
}

// GetRanking returns all products ordered most-urgent first.
func (h *ForecastHandler) GetRanking(c *gin.Context) {
	ranked, err := h.service.UrgencyRanking(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": ranked, "total": len(ranked)})
}

// RefreshForecasts recomputes and persists every product's forecast.
func (h *ForecastHandler) RefreshForecasts(c *gin.Context) {
	products, err := h.service.RefreshForecasts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (h *ForecastHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	log.Error().Err(err).Msg("forecast handler error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
