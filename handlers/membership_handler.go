package handlers

import (
	"net/http"
	"time"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var planPrices = map[string]float64{
	models.PlanBasic:   19.90,
	models.PlanPremium: 49.90,
	models.PlanVIP:     99.90,
}

type MembershipHandler struct {
	db *gorm.DB
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{db: db}
}

// Subscribe starts a 30-day membership for the caller. An existing active
// membership is cancelled first.
func (h *MembershipHandler) Subscribe(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req struct {
		PlanName  string `json:"plan_name"`
		AutoRenew bool   `json:"auto_renew"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	price, ok := planPrices[req.PlanName]
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "plan must be BASIC, PREMIUM or VIP"})
	}

	now := time.Now()
	var membership models.Membership
	err := h.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Membership{}).
			Where("user_id = ? AND status = ?", user.ID, models.MembershipActive).
			Update("status", models.MembershipCancelled).Error
		if err != nil {
			return err
		}

		membership = models.Membership{
			UserID:    user.ID,
			PlanName:  req.PlanName,
			Status:    models.MembershipActive,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, 30),
			Price:     price,
			AutoRenew: req.AutoRenew,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create membership"})
	}
	return c.JSON(http.StatusCreated, membership)
}

// GetCurrent returns the caller's latest membership, expiring it lazily when
// the end date has passed.
func (h *MembershipHandler) GetCurrent(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var membership models.Membership
	err := h.db.Where("user_id = ?", user.ID).Order("created_at DESC").First(&membership).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no membership found"})
	}

	before := membership.Status
	membership.Refresh()
	if membership.Status != before {
		h.db.Model(&membership).Update("status", membership.Status)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"membership":     membership,
		"days_remaining": membership.DaysRemaining(),
	})
}

func (h *MembershipHandler) Cancel(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var membership models.Membership
	err := h.db.Where("user_id = ? AND status = ?", user.ID, models.MembershipActive).
		Order("created_at DESC").First(&membership).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no active membership"})
	}

	membership.Status = models.MembershipCancelled
	membership.AutoRenew = false
	if err := h.db.Save(&membership).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to cancel membership"})
	}
	return c.JSON(http.StatusOK, membership)
}

// ListMemberships is the staff view across all users.
func (h *MembershipHandler) ListMemberships(c echo.Context) error {
	var memberships []models.Membership
	query := h.db.Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if plan := c.QueryParam("plan_name"); plan != "" {
		query = query.Where("plan_name = ?", plan)
	}
	if err := query.Find(&memberships).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch memberships"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"memberships": memberships,
		"total":       len(memberships),
	})
}
