package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	products repository.ProductRepository
}

// NewProductHandler creates a new product handler
func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	ImageURL    string `json:"image_url"`
	AgeRange    string `json:"age_range"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	InStock     *bool  `json:"in_stock"`
}

// List returns catalog products, optionally filtered by category
func (h *ProductHandler) List(c *gin.Context) {
	category := c.Query("category")
	inStockOnly := c.Query("in_stock") == "true"

	products, err := h.products.List(c.Request.Context(), category, inStockOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetBySlug returns one product by its slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.products.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Slug:        h.uniqueSlug(c, req.Name),
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    "UGX",
		ImageURL:    req.ImageURL,
		AgeRange:    req.AgeRange,
		Size:        req.Size,
		Color:       req.Color,
		InStock:     true,
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Update modifies an existing product
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.Price = req.Price
	product.ImageURL = req.ImageURL
	product.AgeRange = req.AgeRange
	product.Size = req.Size
	product.Color = req.Color
	if req.InStock != nil {
		product.InStock = *req.InStock
	}

	if err := h.products.Update(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// Delete removes a product from the catalog
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// uniqueSlug derives a URL slug from the product name, suffixing a short
// id when the name is already taken.
func (h *ProductHandler) uniqueSlug(c *gin.Context, name string) string {
	base := slug.Make(name)
	if _, err := h.products.FindBySlug(c.Request.Context(), base); errors.Is(err, repository.ErrNotFound) {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}
