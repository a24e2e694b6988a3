package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Piero-design/VETAQP/models"
	"github.com/Piero-design/VETAQP/services"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var input services.CreateOrderInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	order, err := h.orderService.CreateOrder(user, input)
	if err != nil {
		return orderServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	user := c.Get("user").(*models.User)

	orders, err := h.orderService.ListOrders(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  len(orders),
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	user := c.Get("user").(*models.User)

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid order id"})
	}

	order, err := h.orderService.GetOrder(uint(orderID), user)
	if err != nil {
		return orderServiceError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateShipping moves an order along the shipping pipeline. Staff only.
func (h *OrderHandler) UpdateShipping(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid order id"})
	}

	var input services.ShippingUpdateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if input.ShippingStatus != "" && !validShippingStatus(input.ShippingStatus) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown shipping status"})
	}

	order, err := h.orderService.UpdateShipping(uint(orderID), input)
	if err != nil {
		return orderServiceError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// TrackOrder is the public tracking endpoint; it exposes shipping state only.
func (h *OrderHandler) TrackOrder(c echo.Context) error {
	trackingNumber := c.Param("trackingNumber")
	if trackingNumber == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tracking number is required"})
	}

	order, err := h.orderService.GetByTracking(trackingNumber)
	if err != nil {
		return orderServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tracking_number":         order.TrackingNumber,
		"shipping_status":         order.ShippingStatus,
		"estimated_delivery_date": order.EstimatedDeliveryDate,
		"shipped_date":            order.ShippedDate,
		"delivered_date":          order.DeliveredDate,
		"can_be_delivered":        order.CanBeDelivered(),
	})
}

func validShippingStatus(status string) bool {
	switch status {
	case models.ShippingPending, models.ShippingPreparing, models.ShippingShipped,
		models.ShippingInTransit, models.ShippingOutForDelivery,
		models.ShippingDelivered, models.ShippingFailed:
		return true
	}
	return false
}

func orderServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, services.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
	case errors.Is(err, services.ErrInsufficientStock):
		return c.JSON(http.StatusConflict, map[string]string{"error": "insufficient stock"})
	case errors.Is(err, services.ErrEmptyOrder):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "order must contain at least one item"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
