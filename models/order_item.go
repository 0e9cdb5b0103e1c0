package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots the menu item at order time. Name and price are
// copied, not joined, so later menu edits never rewrite past orders.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"index;not null" json:"order_id"`
	Order      Order           `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint            `gorm:"not null" json:"menu_item_id"`
	ItemName   string          `gorm:"type:varchar(255);not null" json:"item_name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}
