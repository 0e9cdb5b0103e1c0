package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// GetMine returns the caller's restaurant.
func (rc *RestaurantController) GetMine(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, middlewares.RestaurantID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateMine edits the display name. The slug is fixed at registration; QR
// codes in the wild point at it.
func (rc *RestaurantController) UpdateMine(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, middlewares.RestaurantID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	restaurant.Name = req.Name
	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// GetPublicMenu is the customer-facing menu for an active restaurant:
// categories in sort order, available items only.
func (rc *RestaurantController) GetPublicMenu(c *gin.Context) {
	slug := c.Param("slug")

	var restaurant models.Restaurant
	if err := rc.DB.Where("slug = ? AND is_active = ?", slug, true).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var categories []models.Category
	if err := rc.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("sort_order asc").
		Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var items []models.MenuItem
	if err := rc.DB.Where("restaurant_id = ? AND is_available = ?", restaurant.ID, true).
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	itemsByCategory := make(map[uint][]models.MenuItem)
	for _, item := range items {
		itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], item)
	}

	type categoryView struct {
		models.Category
		Items []models.MenuItem `json:"items"`
	}
	menu := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		menu = append(menu, categoryView{Category: cat, Items: itemsByCategory[cat.ID]})
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"restaurant": gin.H{"id": restaurant.ID, "name": restaurant.Name, "slug": restaurant.Slug},
		"categories": menu,
	})
}
