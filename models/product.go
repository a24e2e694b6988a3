package models

import "time"

const (
	ProductStatusActive       = "active"
	ProductStatusInactive     = "inactive"
	ProductStatusDiscontinued = "discontinued"
)

type Category struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name"`
	PetType string `json:"pet_type"` // dog, cat
	Slug    string `json:"slug" gorm:"uniqueIndex"`
	Icon    string `json:"icon"`
}

type Product struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name"`
	Description       string    `json:"description" gorm:"type:text"`
	SKU               string    `json:"sku" gorm:"uniqueIndex"`
	CategoryID        *uint     `json:"category_id" gorm:"index"`
	Price             float64   `json:"price"`
	DiscountPrice     *float64  `json:"discount_price"`
	Stock             int       `json:"stock" gorm:"default:0"`
	LowStockThreshold int       `json:"low_stock_threshold" gorm:"default:5"`
	Brand             string    `json:"brand"`
	Weight            string    `json:"weight"`
	ImageURL          string    `json:"image_url"`
	Status            string    `json:"status" gorm:"default:'active'"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.LowStockThreshold
}

// FinalPrice is the discount price when one is set.
func (p *Product) FinalPrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
