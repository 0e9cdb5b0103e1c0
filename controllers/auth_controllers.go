package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a restaurant name into its URL-safe slug.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Register creates an owner (pending approval) and their restaurant in one
// transaction. The restaurant stays inactive until the admin approves.
func (ac *AuthController) Register(c *gin.Context) {
	type request struct {
		Name           string `json:"name" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required,min=8"`
		RestaurantName string `json:"restaurant_name" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	slug := Slugify(req.RestaurantName)
	if slug == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant name must contain letters or digits"))
		return
	}

	var count int64
	ac.DB.Model(&models.Restaurant{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant name is already taken"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hashed),
		Role:             models.RoleOwner,
		Status:           models.UserStatusPending,
		SubscriptionTier: models.TierFree,
	}
	restaurant := models.Restaurant{
		Name:     req.RestaurantName,
		Slug:     slug,
		IsActive: false,
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		restaurant.OwnerID = user.ID
		return tx.Create(&restaurant).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New owner registered: %s (restaurant=%s)", user.Email, restaurant.Slug)

	utils.RespondJSON(c, http.StatusCreated, "Registration submitted, awaiting approval", gin.H{
		"user_id":       user.ID,
		"restaurant_id": restaurant.ID,
		"slug":          restaurant.Slug,
	})
}

// Login returns a JWT for active accounts.
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if user.Status != models.UserStatusActive {
		utils.RespondError(c, http.StatusForbidden, errors.New("account is not active"))
		return
	}

	// Lapsed subscriptions fall back to free at login time.
	if user.SubscriptionExpiry != nil && user.SubscriptionExpiry.Before(time.Now()) &&
		user.SubscriptionTier != models.TierFree {
		user.SubscriptionTier = models.TierFree
		user.SubscriptionExpiry = nil
		if err := ac.DB.Select("SubscriptionTier", "SubscriptionExpiry", "UpdatedAt").
			Save(&user).Error; err != nil {
			utils.ErrorLogger.Printf("downgrade lapsed subscription for user %d: %v", user.ID, err)
		}
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"role":  user.Role,
	})
}

// GetProfile returns the caller's account and restaurant summary.
func (ac *AuthController) GetProfile(c *gin.Context) {
	userIDVal, exists := c.Get(middlewares.ContextUserID)
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}
	userID, _ := userIDVal.(uint)

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	data := gin.H{"user": user}
	if user.Role == models.RoleOwner {
		var restaurant models.Restaurant
		if err := ac.DB.Where("owner_id = ?", user.ID).First(&restaurant).Error; err == nil {
			data["restaurant"] = restaurant
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data", data)
}
