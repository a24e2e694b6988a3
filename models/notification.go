package models

import "time"

const (
	NotificationInfo    = "INFO"
	NotificationWarning = "WARNING"
	NotificationSuccess = "SUCCESS"
	NotificationError   = "ERROR"
)

type Notification struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"index"`
	Title            string    `json:"title"`
	Message          string    `json:"message" gorm:"type:text"`
	NotificationType string    `json:"notification_type" gorm:"default:'INFO'"`
	IsRead           bool      `json:"is_read" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
}
