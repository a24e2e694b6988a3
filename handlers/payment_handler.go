package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Piero-design/VETAQP/kafka"
	"github.com/Piero-design/VETAQP/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	db       *gorm.DB
	producer *kafka.Producer
}

func NewPaymentHandler(db *gorm.DB, producer *kafka.Producer) *PaymentHandler {
	return &PaymentHandler{db: db, producer: producer}
}

// CreatePayment registers a payment. Completed payments also mark the linked
// order COMPLETED and emit a payment event.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req struct {
		OrderID       *uint   `json:"order_id"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
		Status        string  `json:"status"`
		Notes         string  `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown payment method"})
	}
	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !validPaymentStatus(status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown payment status"})
	}

	payerID := user.ID
	if req.OrderID != nil {
		var order models.Order
		if err := h.db.First(&order, *req.OrderID).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
		}
		if !user.IsStaff && order.UserID != user.ID {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
		}
		payerID = order.UserID
	}

	payment := models.Payment{
		UserID:        payerID,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		TransactionID: uuid.New().String(),
		Notes:         req.Notes,
	}
	if err := h.db.Create(&payment).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create payment"})
	}

	if payment.Status == models.PaymentStatusCompleted {
		h.onPaymentCompleted(&payment)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var payments []models.Payment
	query := h.db.Order("created_at DESC")
	if !user.IsStaff {
		query = query.Where("user_id = ?", user.ID)
	} else if userID := c.QueryParam("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&payments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch payments"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    len(payments),
	})
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var payment models.Payment
	if err := h.db.First(&payment, c.Param("paymentId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "payment not found"})
	}
	if !user.IsStaff && payment.UserID != user.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
	}
	return c.JSON(http.StatusOK, payment)
}

// UpdatePaymentStatus transitions a payment. Staff only. Completing a pending
// payment triggers the same side effects as creating a completed one.
func (h *PaymentHandler) UpdatePaymentStatus(c echo.Context) error {
	var payment models.Payment
	if err := h.db.First(&payment, c.Param("paymentId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "payment not found"})
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if !validPaymentStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown payment status"})
	}

	wasCompleted := payment.Status == models.PaymentStatusCompleted
	payment.Status = req.Status
	if req.Notes != "" {
		payment.Notes = req.Notes
	}
	if err := h.db.Save(&payment).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update payment"})
	}

	if !wasCompleted && payment.Status == models.PaymentStatusCompleted {
		h.onPaymentCompleted(&payment)
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) onPaymentCompleted(payment *models.Payment) {
	if payment.OrderID != nil {
		err := h.db.Model(&models.Order{}).
			Where("id = ?", *payment.OrderID).
			Update("status", models.OrderStatusCompleted).Error
		if err != nil {
			log.Printf("Failed to complete order %d: %v", *payment.OrderID, err)
		}
	}

	if h.producer == nil {
		return
	}
	event := kafka.PaymentCompletedEvent{
		PaymentID:     payment.ID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
		Timestamp:     time.Now().Unix(),
	}
	if err := h.producer.SendMessage(kafka.TopicPaymentCompleted, fmt.Sprintf("%d", payment.ID), event); err != nil {
		log.Printf("Failed to publish payment event: %v", err)
	}
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodCard,
		models.PaymentMethodTransfer, models.PaymentMethodYape:
		return true
	}
	return false
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusCompleted,
		models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return true
	}
	return false
}
