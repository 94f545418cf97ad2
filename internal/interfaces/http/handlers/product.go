// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/product"
)

// ProductHandler handles catalog and stock endpoints
type ProductHandler struct {
	products  *product.Service
	inventory *inventory.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, inventory *inventory.Service) *ProductHandler {
	return &ProductHandler{
		products:  products,
		inventory: inventory,
	}
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.products.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	p, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// AdminRestock handles POST /admin/products/:id/restock
func (h *ProductHandler) AdminRestock(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inventory.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	level, err := h.inventory.Restock(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product restocked successfully",
		"data":    level,
	})
}

// AdminStockLevel handles GET /admin/products/:id/stock
func (h *ProductHandler) AdminStockLevel(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	level, err := h.inventory.StockLevel(c.Request.Context(), productID, 50)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock level retrieved successfully",
		"data":    level,
	})
}
