package handlers

import (
	"net/http"
	"time"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GetStats aggregates the back office overview numbers. Staff only.
func (h *DashboardHandler) GetStats(c echo.Context) error {
	var (
		totalClients      int64
		totalPets         int64
		totalProducts     int64
		lowStockProducts  int64
		pendingOrders     int64
		activeMemberships int64
		upcomingVisits    int64
	)

	h.db.Model(&models.User{}).Where("is_staff = ? AND is_active = ?", false, true).Count(&totalClients)
	h.db.Model(&models.Pet{}).Count(&totalPets)
	h.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive).Count(&totalProducts)
	h.db.Model(&models.Product{}).
		Where("status = ? AND stock <= low_stock_threshold", models.ProductStatusActive).
		Count(&lowStockProducts)
	h.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders)
	h.db.Model(&models.Membership{}).
		Where("status = ? AND end_date > ?", models.MembershipActive, time.Now()).
		Count(&activeMemberships)
	h.db.Model(&models.Appointment{}).
		Where("status = ? AND scheduled_at >= ?", models.AppointmentScheduled, time.Now()).
		Count(&upcomingVisits)

	startOfMonth := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)
	var monthRevenue float64
	h.db.Model(&models.Payment{}).
		Where("status = ? AND created_at >= ?", models.PaymentStatusCompleted, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthRevenue)

	ordersByStatus := h.countByColumn(&models.Order{}, "status")
	ordersByShipping := h.countByColumn(&models.Order{}, "shipping_status")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_clients":             totalClients,
		"total_pets":                totalPets,
		"total_products":            totalProducts,
		"low_stock_products":        lowStockProducts,
		"pending_orders":            pendingOrders,
		"active_memberships":        activeMemberships,
		"upcoming_appointments":     upcomingVisits,
		"month_revenue":             monthRevenue,
		"orders_by_status":          ordersByStatus,
		"orders_by_shipping_status": ordersByShipping,
	})
}

func (h *DashboardHandler) countByColumn(model interface{}, column string) map[string]int64 {
	type bucket struct {
		Value string
		Count int64
	}
	var rows []bucket
	h.db.Model(model).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Scan(&rows)

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Value] = row.Count
	}
	return out
}

// GetRecentActivity lists the latest orders, payments and appointments for
// the dashboard feed. Staff only.
func (h *DashboardHandler) GetRecentActivity(c echo.Context) error {
	var orders []models.Order
	if err := h.db.Order("created_at DESC").Limit(10).Find(&orders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch orders"})
	}

	var payments []models.Payment
	if err := h.db.Order("created_at DESC").Limit(10).Find(&payments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch payments"})
	}

	var appointments []models.Appointment
	err := h.db.Preload("Pet").
		Where("status = ? AND scheduled_at >= ?", models.AppointmentScheduled, time.Now()).
		Order("scheduled_at ASC").Limit(10).Find(&appointments).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch appointments"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"recent_orders":         orders,
		"recent_payments":       payments,
		"upcoming_appointments": appointments,
	})
}

// GetSalesReport sums completed payments per day over the requested window,
// defaulting to the last 30 days.
func (h *DashboardHandler) GetSalesReport(c echo.Context) error {
	days := 30
	if c.QueryParam("days") == "7" {
		days = 7
	} else if c.QueryParam("days") == "90" {
		days = 90
	}
	since := time.Now().AddDate(0, 0, -days)

	type dailySales struct {
		Day     time.Time `json:"day"`
		Revenue float64   `json:"revenue"`
		Count   int64     `json:"count"`
	}
	var rows []dailySales
	err := h.db.Model(&models.Payment{}).
		Select("DATE_TRUNC('day', created_at) AS day, COALESCE(SUM(amount), 0) AS revenue, COUNT(*) AS count").
		Where("status = ? AND created_at >= ?", models.PaymentStatusCompleted, since).
		Group("DATE_TRUNC('day', created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
	}

	var total float64
	for _, row := range rows {
		total += row.Revenue
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"days":          days,
		"daily":         rows,
		"total_revenue": total,
	})
}
