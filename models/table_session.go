package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session status
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
	SessionStatusPaid   = "paid"
)

// Payment methods
const (
	PaymentMethodOnline  = "online"
	PaymentMethodCounter = "counter"
)

// Session payment status
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// TableSession is the unit of customer access: one active session per
// (restaurant, table), reachable only through its opaque token.
type TableSession struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	RestaurantID  uint            `gorm:"index;not null" json:"restaurant_id"`
	Restaurant    Restaurant      `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TableNumber   string          `gorm:"type:varchar(50);not null" json:"table_number"`
	SessionToken  string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_token"`
	Status        string          `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:''" json:"payment_method"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}
