// internal/api/handlers/product_handler.go
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/service"
	"github.com/pantrytrack/backend/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	service    *service.ProductService
	imageStore storage.ObjectStorage
	uploadDir  string
}

func NewProductHandler(service *service.ProductService, imageStore storage.ObjectStorage, uploadDir string) *ProductHandler {
	return &ProductHandler{service: service, imageStore: imageStore, uploadDir: uploadDir}
}

type createProductRequest struct {
	Name       string          `json:"name" binding:"required"`
	Inventory  int             `json:"inventory"`
	Price      decimal.Decimal `json:"price"`
	UnitType   string          `json:"unit_type"`
	IdealStock int             `json:"ideal_stock"`
	ImagePath  string          `json:"image_path"`
}

// Deltas and levels bind through pointers: `binding:"required"` on a
// value type would reject a legal zero.
type deltaRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

type priceDeltaRequest struct {
	Delta *decimal.Decimal `json:"delta" binding:"required"`
}

type levelRequest struct {
	Level *int `json:"level" binding:"required"`
}

// CreateProduct creates a product, or returns the existing one with the
// same name.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.service.AddProduct(c.Request.Context(),
		req.Name, req.Inventory, req.Price, req.UnitType, req.IdealStock, req.ImagePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("name")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IncrementStock adjusts the on-hand count by a delta and records a
// snapshot.
func (h *ProductHandler) IncrementStock(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.service.IncrementStock(c.Request.Context(), c.Param("name"), *req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// SetStock replaces the on-hand count and records a snapshot.
func (h *ProductHandler) SetStock(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Level == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.service.SetStock(c.Request.Context(), c.Param("name"), *req.Level)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) IncrementPrice(c *gin.Context) {
	var req priceDeltaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.service.IncrementPrice(c.Request.Context(), c.Param("name"), *req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) IncrementIdealStock(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.service.IncrementIdealStock(c.Request.Context(), c.Param("name"), *req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) SetIdealStock(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Level == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.service.SetIdealStock(c.Request.Context(), c.Param("name"), *req.Level)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UploadImage stores a product image and points the product at it. The
// file lands in the upload dir and, when object storage is configured,
// is mirrored there under products/<id>/.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	name := c.Param("name")
	product, err := h.service.GetProduct(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image provided"})
		return
	}

	localPath := filepath.Join(h.uploadDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save image"})
		return
	}

	imagePath := localPath
	if h.imageStore != nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		key := storage.ImageKey(product.ID, file.Filename)
		if err := h.imageStore.UploadObject(c.Request.Context(), key, data); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to upload image to object storage")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}
		imagePath = key
	}

	updated, err := h.service.SetImagePath(c.Request.Context(), name, imagePath)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	log.Error().Err(err).Msg("product handler error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
