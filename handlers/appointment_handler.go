package handlers

import (
	"net/http"
	"time"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type AppointmentHandler struct {
	db *gorm.DB
}

func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{db: db}
}

func (h *AppointmentHandler) CreateAppointment(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req struct {
		PetID       uint   `json:"pet_id"`
		ScheduledAt string `json:"scheduled_at"`
		Reason      string `json:"reason"`
		Notes       string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reason is required"})
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "scheduled_at must be RFC3339"})
	}
	if scheduledAt.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "scheduled_at must be in the future"})
	}

	var pet models.Pet
	if err := h.db.First(&pet, req.PetID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "pet not found"})
	}
	if !user.IsStaff && pet.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
	}

	appointment := models.Appointment{
		OwnerID:     pet.OwnerID,
		PetID:       pet.ID,
		ScheduledAt: scheduledAt,
		Reason:      req.Reason,
		Status:      models.AppointmentScheduled,
		Notes:       req.Notes,
	}
	if err := h.db.Create(&appointment).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create appointment"})
	}
	return c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) ListAppointments(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var appointments []models.Appointment
	query := h.db.Preload("Pet").Order("scheduled_at ASC")
	if !user.IsStaff {
		query = query.Where("owner_id = ?", user.ID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.QueryParam("upcoming") == "true" {
		query = query.Where("scheduled_at >= ?", time.Now())
	}
	if err := query.Find(&appointments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch appointments"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"total":        len(appointments),
	})
}

func (h *AppointmentHandler) UpdateAppointment(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var appointment models.Appointment
	if err := h.db.First(&appointment, c.Param("appointmentId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "appointment not found"})
	}
	if !user.IsStaff && appointment.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
	}

	var req struct {
		ScheduledAt *string `json:"scheduled_at"`
		Status      *string `json:"status"`
		Notes       *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "scheduled_at must be RFC3339"})
		}
		appointment.ScheduledAt = scheduledAt
	}
	if req.Status != nil {
		switch *req.Status {
		case models.AppointmentScheduled, models.AppointmentCompleted, models.AppointmentCancelled:
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
		}
		// Marking a visit completed is a clinical action.
		if *req.Status == models.AppointmentCompleted && !user.IsStaff {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "only staff can complete appointments"})
		}
		appointment.Status = *req.Status
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if err := h.db.Save(&appointment).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update appointment"})
	}
	return c.JSON(http.StatusOK, appointment)
}
