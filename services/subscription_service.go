package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/menumate/menumate/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidTier  = errors.New("unknown subscription tier")
)

var validTiers = map[string]bool{
	models.TierFree:    true,
	models.TierStarter: true,
	models.TierPro:     true,
}

// SubscriptionService manages tier/expiry on users. It never touches
// session or order state; the only side effect is restaurant reactivation
// on grant.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Grant sets the tier and an expiry of now + months. Granting to an owner
// also reactivates their restaurant.
func (s *SubscriptionService) Grant(userID uint, tier string, months int) (*models.User, error) {
	if !validTiers[tier] || tier == models.TierFree {
		return nil, ErrInvalidTier
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	expiry := time.Now().AddDate(0, months, 0)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		user.SubscriptionTier = tier
		user.SubscriptionExpiry = &expiry
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if user.Role == models.RoleOwner {
			return tx.Model(&models.Restaurant{}).
				Where("owner_id = ?", user.ID).
				Update("is_active", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Extend adds months to the later of now and the current expiry.
func (s *SubscriptionService) Extend(userID uint, months int) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	base := time.Now()
	if user.SubscriptionExpiry != nil && user.SubscriptionExpiry.After(base) {
		base = *user.SubscriptionExpiry
	}
	expiry := base.AddDate(0, months, 0)

	user.SubscriptionExpiry = &expiry
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Revoke resets the user to the free tier and clears the expiry.
func (s *SubscriptionService) Revoke(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	user.SubscriptionTier = models.TierFree
	user.SubscriptionExpiry = nil
	if err := s.db.Select("SubscriptionTier", "SubscriptionExpiry", "UpdatedAt").
		Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List filters users by tier and/or a name/email search term.
func (s *SubscriptionService) List(tier, search string) ([]models.User, error) {
	query := s.db.Model(&models.User{}).Order("created_at desc")
	if tier != "" {
		query = query.Where("subscription_tier = ?", tier)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var users []models.User
	err := query.Find(&users).Error
	return users, err
}
