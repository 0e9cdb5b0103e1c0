package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/services"
	"github.com/menumate/menumate/utils"
)

type AdminController struct {
	DB            *gorm.DB
	Subscriptions *services.SubscriptionService
}

func NewAdminController(db *gorm.DB, subscriptions *services.SubscriptionService) *AdminController {
	return &AdminController{DB: db, Subscriptions: subscriptions}
}

// GetUsers lists users, filterable by tier and name/email search.
func (ac *AdminController) GetUsers(c *gin.Context) {
	users, err := ac.Subscriptions.List(c.Query("tier"), c.Query("search"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Users", users)
}

// ApproveUser activates a pending owner and their restaurant.
func (ac *AdminController) ApproveUser(c *gin.Context) {
	ac.setUserStatus(c, models.UserStatusActive, true, "User approved")
}

// RejectUser declines a registration and keeps the restaurant inactive.
func (ac *AdminController) RejectUser(c *gin.Context) {
	ac.setUserStatus(c, models.UserStatusRejected, false, "User rejected")
}

func (ac *AdminController) setUserStatus(c *gin.Context, status string, activateRestaurant bool, message string) {
	id, _ := strconv.Atoi(c.Param("user_id"))

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		user.Status = status
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if user.Role == models.RoleOwner {
			return tx.Model(&models.Restaurant{}).
				Where("owner_id = ?", user.ID).
				Update("is_active", activateRestaurant).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Admin set user %d status to %s", user.ID, status)
	utils.RespondJSON(c, http.StatusOK, message, user)
}

// GrantSubscription sets tier + expiry and reactivates the owner's
// restaurant.
func (ac *AdminController) GrantSubscription(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("user_id"))

	var req struct {
		Tier   string `json:"tier" binding:"required"`
		Months int    `json:"months" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := ac.Subscriptions.Grant(uint(id), req.Tier, req.Months)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Subscription granted", user)
}

// ExtendSubscription adds months to the later of now and current expiry.
func (ac *AdminController) ExtendSubscription(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("user_id"))

	var req struct {
		Months int `json:"months" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := ac.Subscriptions.Extend(uint(id), req.Months)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Subscription extended", user)
}

// RevokeSubscription resets the user to free and clears the expiry.
func (ac *AdminController) RevokeSubscription(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("user_id"))

	user, err := ac.Subscriptions.Revoke(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Subscription revoked", user)
}

// UpsertSettings writes plan display settings by key.
func (ac *AdminController) UpsertSettings(c *gin.Context) {
	var req struct {
		Settings map[string]string `json:"settings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	for key, value := range req.Settings {
		setting := models.PlatformSetting{Key: key, Value: value}
		if err := ac.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&setting).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Settings saved", req.Settings)
}

// GetPlanSettings is the public read-only plan display.
func (ac *AdminController) GetPlanSettings(c *gin.Context) {
	var settings []models.PlatformSetting
	if err := ac.DB.Where("`key` IN ?", []string{
		models.SettingPlanName,
		models.SettingPlanPrice,
		models.SettingPlanCurrency,
		models.SettingPlanInterval,
	}).Find(&settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	plan := make(map[string]string, len(settings))
	for _, s := range settings {
		plan[s.Key] = s.Value
	}
	utils.RespondJSON(c, http.StatusOK, "Plan settings", plan)
}
