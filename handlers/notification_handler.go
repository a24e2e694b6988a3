package handlers

import (
	"net/http"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var notifications []models.Notification
	query := h.db.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(100)
	if c.QueryParam("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch notifications"})
	}

	var unread int64
	h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).Count(&unread)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         len(notifications),
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	user := c.Get("user").(*models.User)

	result := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("notificationId"), user.ID).
		Update("is_read", true)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update notification"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "notification not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	user := c.Get("user").(*models.User)

	result := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update notifications"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated_count": result.RowsAffected,
	})
}

// Broadcast sends a notification to every active user. Staff only.
func (h *NotificationHandler) Broadcast(c echo.Context) error {
	var req struct {
		Title            string `json:"title"`
		Message          string `json:"message"`
		NotificationType string `json:"notification_type"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Title == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title and message are required"})
	}
	if req.NotificationType == "" {
		req.NotificationType = models.NotificationInfo
	}

	var users []models.User
	if err := h.db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch users"})
	}

	notifications := make([]models.Notification, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, models.Notification{
			UserID:           u.ID,
			Title:            req.Title,
			Message:          req.Message,
			NotificationType: req.NotificationType,
		})
	}
	if len(notifications) > 0 {
		if err := h.db.CreateInBatches(notifications, 100).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create notifications"})
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"created_count": len(notifications),
	})
}
