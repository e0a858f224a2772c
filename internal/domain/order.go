package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidNextStatuses lists the transitions allowed from each status.
var ValidNextStatuses = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range ValidNextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order represents a placed order tracked by the storefront.
// Monetary fields carry decimal text, same as catalog prices.
type Order struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	OrderNumber   string      `json:"order_number" db:"order_number"`
	CustomerEmail string      `json:"customer_email" db:"customer_email"`
	Status        OrderStatus `json:"status" db:"status"`
	Subtotal      string      `json:"subtotal" db:"subtotal"`
	ShippingFee   string      `json:"shipping_fee" db:"shipping_fee"`
	Total         string      `json:"total" db:"total"`
	Pincode       string      `json:"pincode" db:"pincode"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is one purchased line of an order
type OrderItem struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OrderID   uuid.UUID  `json:"order_id" db:"order_id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty" db:"variant_id"`
	Name      string     `json:"name" db:"name"`
	UnitPrice string     `json:"unit_price" db:"unit_price"`
	Quantity  int        `json:"quantity" db:"quantity"`
}
