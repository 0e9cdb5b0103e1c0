package models

import "time"

// User roles
const (
	RoleOwner      = "owner"
	RoleSuperAdmin = "super_admin"
)

// User account status
const (
	UserStatusPending  = "pending"
	UserStatusActive   = "active"
	UserStatusRejected = "rejected"
)

// Subscription tiers
const (
	TierFree    = "free"
	TierStarter = "starter"
	TierPro     = "pro"
)

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(255);not null" json:"name"`
	Email              string     `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password           string     `gorm:"type:varchar(255);not null" json:"-"`
	Role               string     `gorm:"type:varchar(20);not null;default:'owner'" json:"role"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	SubscriptionTier   string     `gorm:"type:varchar(20);not null;default:'free'" json:"subscription_tier"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}
