package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/menumate/menumate/models"
)

func TestGrantSubscriptionReactivatesRestaurant(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "lapsed")
	db.Model(&models.Restaurant{}).Where("id = ?", restaurant.ID).Update("is_active", false)

	svc := NewSubscriptionService(db)

	user, err := svc.Grant(restaurant.OwnerID, models.TierPro, 3)
	assert.NoError(t, err)
	assert.Equal(t, models.TierPro, user.SubscriptionTier)
	assert.NotNil(t, user.SubscriptionExpiry)
	assert.WithinDuration(t, time.Now().AddDate(0, 3, 0), *user.SubscriptionExpiry, time.Minute)

	var fetched models.Restaurant
	db.First(&fetched, restaurant.ID)
	assert.True(t, fetched.IsActive)
}

func TestGrantSubscriptionRejectsBadTier(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "tiers")
	svc := NewSubscriptionService(db)

	_, err := svc.Grant(restaurant.OwnerID, "platinum", 1)
	assert.ErrorIs(t, err, ErrInvalidTier)

	// Granting free makes no sense; that's what revoke is for.
	_, err = svc.Grant(restaurant.OwnerID, models.TierFree, 1)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestExtendSubscriptionFromLaterOfNowAndExpiry(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "extend")
	svc := NewSubscriptionService(db)

	// Expired subscription: extension counts from now.
	past := time.Now().AddDate(0, -2, 0)
	db.Model(&models.User{}).Where("id = ?", restaurant.OwnerID).
		Updates(map[string]interface{}{"subscription_tier": models.TierStarter, "subscription_expiry": past})

	user, err := svc.Extend(restaurant.OwnerID, 1)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 1, 0), *user.SubscriptionExpiry, time.Minute)

	// Active subscription: extension counts from the current expiry.
	user, err = svc.Extend(restaurant.OwnerID, 1)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 2, 0), *user.SubscriptionExpiry, time.Minute)
}

func TestRevokeSubscriptionResetsToFree(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "revoke")
	svc := NewSubscriptionService(db)

	_, err := svc.Grant(restaurant.OwnerID, models.TierPro, 12)
	assert.NoError(t, err)

	user, err := svc.Revoke(restaurant.OwnerID)
	assert.NoError(t, err)
	assert.Equal(t, models.TierFree, user.SubscriptionTier)
	assert.Nil(t, user.SubscriptionExpiry)

	var fetched models.User
	db.First(&fetched, restaurant.OwnerID)
	assert.Equal(t, models.TierFree, fetched.SubscriptionTier)
	assert.Nil(t, fetched.SubscriptionExpiry)
}

func TestListUsersFilters(t *testing.T) {
	db := newTestDB(t)
	a := seedRestaurant(t, db, "alpha")
	seedRestaurant(t, db, "beta")
	svc := NewSubscriptionService(db)

	_, err := svc.Grant(a.OwnerID, models.TierStarter, 1)
	assert.NoError(t, err)

	starters, err := svc.List(models.TierStarter, "")
	assert.NoError(t, err)
	assert.Len(t, starters, 1)
	assert.Equal(t, a.OwnerID, starters[0].ID)

	matches, err := svc.List("", "beta@")
	assert.NoError(t, err)
	assert.Len(t, matches, 1)

	all, err := svc.List("", "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
