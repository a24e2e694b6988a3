package handlers

import (
	"errors"
	"net/http"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type InventoryHandler struct {
	db *gorm.DB
}

func NewInventoryHandler(db *gorm.DB) *InventoryHandler {
	return &InventoryHandler{db: db}
}

var errInsufficientStock = errors.New("insufficient stock")

// RecordMovement applies a stock movement and updates the product's stock in
// one transaction. IN adds, OUT subtracts, ADJUSTMENT sets an absolute level.
func (h *InventoryHandler) RecordMovement(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req struct {
		ProductID    uint   `json:"product_id"`
		MovementType string `json:"movement_type"`
		Quantity     int    `json:"quantity"`
		Reason       string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	switch req.MovementType {
	case models.MovementIn, models.MovementOut:
		if req.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "quantity must be positive"})
		}
	case models.MovementAdjustment:
		if req.Quantity < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "quantity must not be negative"})
		}
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "movement_type must be IN, OUT or ADJUSTMENT"})
	}

	var movement models.StockMovement
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			return err
		}

		newStock := product.Stock
		switch req.MovementType {
		case models.MovementIn:
			newStock += req.Quantity
		case models.MovementOut:
			newStock -= req.Quantity
			if newStock < 0 {
				return errInsufficientStock
			}
		case models.MovementAdjustment:
			newStock = req.Quantity
		}

		if err := tx.Model(&product).Update("stock", newStock).Error; err != nil {
			return err
		}

		movement = models.StockMovement{
			ProductID:    req.ProductID,
			MovementType: req.MovementType,
			Quantity:     req.Quantity,
			Reason:       req.Reason,
			UserID:       &user.ID,
		}
		return tx.Create(&movement).Error
	})
	if errors.Is(err, errInsufficientStock) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "insufficient stock"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record movement"})
	}
	return c.JSON(http.StatusCreated, movement)
}

func (h *InventoryHandler) ListMovements(c echo.Context) error {
	var movements []models.StockMovement
	query := h.db.Order("created_at DESC").Limit(200)
	if productID := c.QueryParam("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if movementType := c.QueryParam("movement_type"); movementType != "" {
		query = query.Where("movement_type = ?", movementType)
	}
	if err := query.Find(&movements).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch movements"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     len(movements),
	})
}

// LowStockReport lists active products at or below their low stock threshold.
func (h *InventoryHandler) LowStockReport(c echo.Context) error {
	var products []models.Product
	err := h.db.
		Where("status = ?", models.ProductStatusActive).
		Where("stock <= low_stock_threshold").
		Order("stock ASC").
		Find(&products).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch report"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	})
}
