package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/utils"
)

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

// CreateCategory appends at the end of the owner's category list
// (sort_order = current max + 1).
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurantID := middlewares.RestaurantID(c)

	var category models.Category
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		tx.Model(&models.Category{}).
			Where("restaurant_id = ?", restaurantID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&maxOrder)

		category = models.Category{
			RestaurantID: restaurantID,
			Name:         req.Name,
			SortOrder:    maxOrder + 1,
		}
		return tx.Create(&category).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (cc *CategoryController) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := cc.DB.Where("restaurant_id = ?", middlewares.RestaurantID(c)).
		Order("sort_order asc").
		Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categories", categories)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("category_id"))

	var category models.Category
	if err := cc.DB.Where("id = ? AND restaurant_id = ?", id, middlewares.RestaurantID(c)).
		First(&category).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("category_id"))

	res := cc.DB.Where("id = ? AND restaurant_id = ?", id, middlewares.RestaurantID(c)).
		Delete(&models.Category{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}
