package handlers

import (
	"net/http"
	"strings"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts is the public catalog. Inactive and discontinued products are
// hidden unless a staff caller asks for them explicitly.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	var products []models.Product
	query := h.db.Preload("Category").Order("created_at DESC")

	includeAll := false
	if user, ok := c.Get("user").(*models.User); ok && user.IsStaff && c.QueryParam("all") == "true" {
		includeAll = true
	}
	if !includeAll {
		query = query.Where("status = ?", models.ProductStatusActive)
	}

	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}
	if c.QueryParam("in_stock") == "true" {
		query = query.Where("stock > 0")
	}

	if err := query.Find(&products).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch products"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	var product models.Product
	if err := h.db.Preload("Category").First(&product, c.Param("productId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"product":     product,
		"in_stock":    product.IsInStock(),
		"low_stock":   product.IsLowStock(),
		"final_price": product.FinalPrice(),
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name              string   `json:"name"`
		Description       string   `json:"description"`
		SKU               string   `json:"sku"`
		CategoryID        *uint    `json:"category_id"`
		Price             float64  `json:"price"`
		DiscountPrice     *float64 `json:"discount_price"`
		Stock             int      `json:"stock"`
		LowStockThreshold int      `json:"low_stock_threshold"`
		Brand             string   `json:"brand"`
		Weight            string   `json:"weight"`
		ImageURL          string   `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and sku are required"})
	}
	if req.Price < 0 || req.Stock < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "price and stock must not be negative"})
	}

	product := models.Product{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		Brand:             req.Brand,
		Weight:            req.Weight,
		ImageURL:          req.ImageURL,
		Status:            models.ProductStatusActive,
	}
	if product.LowStockThreshold == 0 {
		product.LowStockThreshold = 5
	}
	if err := h.db.Create(&product).Error; err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "sku already in use"})
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var product models.Product
	if err := h.db.First(&product, c.Param("productId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
	}

	var req struct {
		Name              *string  `json:"name"`
		Description       *string  `json:"description"`
		CategoryID        *uint    `json:"category_id"`
		Price             *float64 `json:"price"`
		DiscountPrice     *float64 `json:"discount_price"`
		LowStockThreshold *int     `json:"low_stock_threshold"`
		Brand             *string  `json:"brand"`
		Weight            *string  `json:"weight"`
		ImageURL          *string  `json:"image_url"`
		Status            *string  `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "price must not be negative"})
		}
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Weight != nil {
		product.Weight = *req.Weight
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Status != nil {
		switch *req.Status {
		case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusDiscontinued:
			product.Status = *req.Status
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
		}
	}

	if err := h.db.Save(&product).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update product"})
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct marks the product discontinued instead of removing the row,
// so existing order items keep their reference.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	var product models.Product
	if err := h.db.First(&product, c.Param("productId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
	}

	product.Status = models.ProductStatusDiscontinued
	if err := h.db.Save(&product).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete product"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "product discontinued"})
}

func (h *ProductHandler) ListCategories(c echo.Context) error {
	var categories []models.Category
	query := h.db.Order("name ASC")
	if petType := c.QueryParam("pet_type"); petType != "" {
		query = query.Where("pet_type = ?", petType)
	}
	if err := query.Find(&categories).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch categories"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
		"total":      len(categories),
	})
}

func (h *ProductHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		PetType string `json:"pet_type"`
		Slug    string `json:"slug"`
		Icon    string `json:"icon"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if req.Slug == "" {
		req.Slug = strings.ToLower(strings.ReplaceAll(req.Name, " ", "-"))
	}

	category := models.Category{
		Name:    req.Name,
		PetType: req.PetType,
		Slug:    req.Slug,
		Icon:    req.Icon,
	}
	if err := h.db.Create(&category).Error; err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "slug already in use"})
	}
	return c.JSON(http.StatusCreated, category)
}
