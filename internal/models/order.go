package models

import (
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a customer purchase. Orders may be placed by guests, in which
// case UserID is nil and the customer contact fields identify the buyer.
type Order struct {
	Base
	UserID           *uuid.UUID  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User             *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CustomerName     string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail    string      `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	CustomerPhone    string      `gorm:"type:varchar(20);not null" json:"customer_phone"`
	DeliveryAddress  string      `gorm:"type:text" json:"delivery_address,omitempty"`
	Total            int64       `gorm:"not null" json:"total"`
	Currency         string      `gorm:"type:varchar(3);not null;default:'UGX'" json:"currency"`
	Status           OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod    string      `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	PaymentReference string      `gorm:"type:varchar(100);index" json:"payment_reference,omitempty"`
	Items            []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem is a single line on an order. Product name and unit price are
// copied at purchase time so later catalog edits do not rewrite history.
type OrderItem struct {
	Base
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
}
