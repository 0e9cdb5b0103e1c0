package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumate/menumate/models"
)

func adminRouter(env *testEnv) *gin.Engine {
	admin := NewAdminController(env.db, env.subs)
	r := gin.New()
	r.GET("/api/settings/plan", admin.GetPlanSettings)

	g := r.Group("/api/admin", asSuperAdmin(1))
	g.GET("/users", admin.GetUsers)
	g.PATCH("/users/:user_id/approve", admin.ApproveUser)
	g.PATCH("/users/:user_id/reject", admin.RejectUser)
	g.POST("/users/:user_id/subscription", admin.GrantSubscription)
	g.PATCH("/users/:user_id/subscription/extend", admin.ExtendSubscription)
	g.DELETE("/users/:user_id/subscription", admin.RevokeSubscription)
	g.PUT("/settings", admin.UpsertSettings)
	return r
}

func seedPendingOwner(t *testing.T, env *testEnv) models.User {
	t.Helper()
	owner := models.User{
		Name:     "Pending Owner",
		Email:    "pending@example.com",
		Password: "x",
		Role:     models.RoleOwner,
		Status:   models.UserStatusPending,
	}
	require.NoError(t, env.db.Create(&owner).Error)
	restaurant := models.Restaurant{OwnerID: owner.ID, Name: "Pending", Slug: "pending", IsActive: false}
	require.NoError(t, env.db.Create(&restaurant).Error)
	return owner
}

func TestApproveUserActivatesRestaurant(t *testing.T) {
	env := newTestEnv(t)
	owner := seedPendingOwner(t, env)
	r := adminRouter(env)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/approve", owner.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, owner.ID).Error)
	assert.Equal(t, models.UserStatusActive, reloaded.Status)

	var restaurant models.Restaurant
	require.NoError(t, env.db.Where("owner_id = ?", owner.ID).First(&restaurant).Error)
	assert.True(t, restaurant.IsActive)
}

func TestRejectUserKeepsRestaurantInactive(t *testing.T) {
	env := newTestEnv(t)
	owner := seedPendingOwner(t, env)
	r := adminRouter(env)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/reject", owner.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, owner.ID).Error)
	assert.Equal(t, models.UserStatusRejected, reloaded.Status)

	var restaurant models.Restaurant
	require.NoError(t, env.db.Where("owner_id = ?", owner.ID).First(&restaurant).Error)
	assert.False(t, restaurant.IsActive)

	w = doJSON(t, r, http.MethodPatch, "/api/admin/users/9999/reject", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGrantAndRevokeSubscriptionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	restaurant := env.seedRestaurant(t, "warung")
	r := adminRouter(env)

	path := fmt.Sprintf("/api/admin/users/%d/subscription", restaurant.OwnerID)
	w := doJSON(t, r, http.MethodPost, path, gin.H{"tier": models.TierPro, "months": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, env.db.First(&user, restaurant.OwnerID).Error)
	assert.Equal(t, models.TierPro, user.SubscriptionTier)
	require.NotNil(t, user.SubscriptionExpiry)
	assert.WithinDuration(t, time.Now().AddDate(0, 3, 0), *user.SubscriptionExpiry, time.Minute)

	w = doJSON(t, r, http.MethodPost, path, gin.H{"tier": "platinum", "months": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Fresh struct: scanning NULL into a reused one keeps the old pointer.
	var revoked models.User
	require.NoError(t, env.db.First(&revoked, restaurant.OwnerID).Error)
	assert.Equal(t, models.TierFree, revoked.SubscriptionTier)
	assert.Nil(t, revoked.SubscriptionExpiry)
}

func TestUpsertAndReadPlanSettings(t *testing.T) {
	env := newTestEnv(t)
	r := adminRouter(env)

	w := doJSON(t, r, http.MethodPut, "/api/admin/settings", gin.H{
		"settings": gin.H{
			models.SettingPlanName:     "Starter",
			models.SettingPlanPrice:    "9.99",
			models.SettingPlanCurrency: "USD",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Upsert overwrites in place rather than duplicating the key.
	w = doJSON(t, r, http.MethodPut, "/api/admin/settings", gin.H{
		"settings": gin.H{models.SettingPlanPrice: "14.99"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/settings/plan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	plan := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Starter", plan[models.SettingPlanName])
	assert.Equal(t, "14.99", plan[models.SettingPlanPrice])

	var count int64
	env.db.Model(&models.PlatformSetting{}).Where("`key` = ?", models.SettingPlanPrice).Count(&count)
	assert.EqualValues(t, 1, count)
}
