package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status
const (
	OrderStatusPending   = "pending"
	OrderStatusCooking   = "cooking"
	OrderStatusReady     = "ready"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	RestaurantID  uint            `gorm:"index;not null" json:"restaurant_id"`
	Restaurant    Restaurant      `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SessionID     *uint           `gorm:"index" json:"session_id,omitempty"`
	Session       *TableSession   `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(50)" json:"customer_phone"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	PaymentRef    string          `gorm:"type:varchar(255)" json:"payment_ref,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}
