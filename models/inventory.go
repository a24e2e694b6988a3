package models

import "time"

const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
)

// StockMovement records one inventory change. The product's stock is
// updated in the same transaction that creates the row.
type StockMovement struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProductID    uint      `json:"product_id" gorm:"index"`
	MovementType string    `json:"movement_type"` // IN, OUT, ADJUSTMENT
	Quantity     int       `json:"quantity"`
	Reason       string    `json:"reason"`
	UserID       *uint     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`

	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}
