package models

import "time"

// Well-known setting keys for the subscription plan display.
const (
	SettingPlanName     = "plan_name"
	SettingPlanPrice    = "plan_price"
	SettingPlanCurrency = "plan_currency"
	SettingPlanInterval = "plan_interval"
)

// PlatformSetting stores admin-configurable key/value settings.
type PlatformSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
