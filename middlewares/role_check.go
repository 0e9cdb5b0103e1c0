package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/utils"
)

// RequireRole allows only the given roles past this point.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("missing user context"))
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			utils.RespondError(c, http.StatusForbidden, errors.New("insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRestaurant resolves the caller's restaurant and stores its ID in
// the context, so handlers scope queries instead of re-deriving ownership.
func RequireRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get(ContextUserID)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("missing user context"))
			c.Abort()
			return
		}
		userID, _ := userIDVal.(uint)

		var restaurant models.Restaurant
		if err := db.Where("owner_id = ?", userID).First(&restaurant).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("no restaurant for this account"))
			c.Abort()
			return
		}

		c.Set(ContextRestaurantID, restaurant.ID)
		c.Next()
	}
}

// RestaurantID returns the restaurant ID resolved by RequireRestaurant.
func RestaurantID(c *gin.Context) uint {
	v, _ := c.Get(ContextRestaurantID)
	id, _ := v.(uint)
	return id
}
