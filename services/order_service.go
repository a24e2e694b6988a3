package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Piero-design/VETAQP/kafka"
	"github.com/Piero-design/VETAQP/models"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no items")
)

type OrderItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items"`
	ShippingAddress string           `json:"shipping_address"`
	Notes           string           `json:"notes"`
}

type OrderService struct {
	db       *gorm.DB
	producer *kafka.Producer
}

// NewOrderService accepts a nil producer; order events are then skipped,
// which keeps local development independent of a broker.
func NewOrderService(db *gorm.DB, producer *kafka.Producer) *OrderService {
	return &OrderService{db: db, producer: producer}
}

// CreateOrder builds the order, captures unit prices, decrements stock via
// OUT movements and computes the total, all in one transaction.
func (s *OrderService) CreateOrder(user *models.User, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			UserID:          user.ID,
			Status:          models.OrderStatusPending,
			ShippingStatus:  models.ShippingPending,
			ShippingAddress: input.ShippingAddress,
			Notes:           input.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range input.Items {
			if item.Quantity <= 0 {
				return ErrEmptyOrder
			}
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if product.Stock < item.Quantity {
				return ErrInsufficientStock
			}

			orderItem := models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.FinalPrice(),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			total += orderItem.Subtotal()
			order.Items = append(order.Items, orderItem)

			movement := models.StockMovement{
				ProductID:    product.ID,
				MovementType: models.MovementOut,
				Quantity:     item.Quantity,
				Reason:       fmt.Sprintf("order #%d", order.ID),
				UserID:       &user.ID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			if err := tx.Model(&product).
				Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		order.Total = total
		return tx.Model(&order).Update("total", total).Error
	})
	if err != nil {
		return nil, err
	}

	if s.producer != nil {
		event := kafka.OrderCreatedEvent{
			OrderID:   order.ID,
			UserID:    user.ID,
			Total:     order.Total,
			Timestamp: time.Now().Unix(),
		}
		if err := s.producer.SendMessage(kafka.TopicOrderCreated, fmt.Sprintf("%d", order.ID), event); err != nil {
			log.Printf("Failed to publish order event: %v", err)
		}
	}

	return &order, nil
}

// GetOrder loads an order with its items; clients only see their own.
func (s *OrderService) GetOrder(orderID uint, user *models.User) (*models.Order, error) {
	var order models.Order
	query := s.db.Preload("Items")
	if !user.IsStaff {
		query = query.Where("user_id = ?", user.ID)
	}
	if err := query.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) ListOrders(user *models.User) ([]models.Order, error) {
	var orders []models.Order
	query := s.db.Preload("Items").Order("created_at DESC")
	if !user.IsStaff {
		query = query.Where("user_id = ?", user.ID)
	}
	err := query.Find(&orders).Error
	return orders, err
}

type ShippingUpdateInput struct {
	ShippingStatus        string     `json:"shipping_status"`
	TrackingNumber        string     `json:"tracking_number"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
}

// UpdateShipping moves an order along the shipping pipeline, stamping the
// shipped/delivered dates at the matching transitions.
func (s *OrderService) UpdateShipping(orderID uint, input ShippingUpdateInput) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.ShippingStatus != "" {
		updates["shipping_status"] = input.ShippingStatus
		now := time.Now()
		switch input.ShippingStatus {
		case models.ShippingShipped:
			updates["shipped_date"] = &now
		case models.ShippingDelivered:
			updates["delivered_date"] = &now
		}
	}
	if input.TrackingNumber != "" {
		updates["tracking_number"] = input.TrackingNumber
	}
	if input.EstimatedDeliveryDate != nil {
		updates["estimated_delivery_date"] = input.EstimatedDeliveryDate
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByTracking resolves a tracking number for the public tracking page.
func (s *OrderService) GetByTracking(trackingNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("tracking_number = ?", trackingNumber).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
