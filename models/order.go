package models

import "time"

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"

	ShippingPending        = "PENDING"
	ShippingPreparing      = "PREPARING"
	ShippingShipped        = "SHIPPED"
	ShippingInTransit      = "IN_TRANSIT"
	ShippingOutForDelivery = "OUT_FOR_DELIVERY"
	ShippingDelivered      = "DELIVERED"
	ShippingFailed         = "FAILED"
)

type Order struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	UserID uint    `json:"user_id" gorm:"index"`
	Status string  `json:"status" gorm:"default:'PENDING'"`
	Total  float64 `json:"total"`
	Notes  string  `json:"notes" gorm:"type:text"`

	ShippingStatus        string     `json:"shipping_status" gorm:"default:'PENDING';index"`
	TrackingNumber        string     `json:"tracking_number" gorm:"index"`
	ShippingAddress       string     `json:"shipping_address" gorm:"type:text"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
	ShippedDate           *time.Time `json:"shipped_date"`
	DeliveredDate         *time.Time `json:"delivered_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User        `json:"-" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// IsTrackable reports whether a tracking number has been assigned.
func (o *Order) IsTrackable() bool {
	return o.TrackingNumber != ""
}

// CanBeDelivered reports whether the order is in a shippable leg of the
// pipeline.
func (o *Order) CanBeDelivered() bool {
	switch o.ShippingStatus {
	case ShippingShipped, ShippingInTransit, ShippingOutForDelivery:
		return true
	}
	return false
}

type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   uint    `json:"order_id" gorm:"index"`
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity" gorm:"default:1"`
	UnitPrice float64 `json:"unit_price"` // captured at order time

	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}

func (i *OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
