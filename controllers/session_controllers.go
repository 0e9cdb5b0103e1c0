package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/services"
	"github.com/menumate/menumate/utils"
)

type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
}

func NewSessionController(db *gorm.DB, sessions *services.SessionService) *SessionController {
	return &SessionController{DB: db, Sessions: sessions}
}

// serviceErrStatus maps service sentinel errors to HTTP codes. Anything
// unrecognized is an internal error and must not leak detail.
func serviceErrStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSessionNotActive),
		errors.Is(err, services.ErrInvalidMethod),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrInvalidSignature),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInvalidTier):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	status := serviceErrStatus(err)
	if status == http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, status, errors.New("internal server error"))
		return
	}
	utils.RespondError(c, status, err)
}

// OpenSession starts (or rejoins) the table session behind a scanned QR
// code. Re-scanning while a session is active returns the same session.
func (sc *SessionController) OpenSession(c *gin.Context) {
	var req struct {
		RestaurantID uint   `json:"restaurant_id"`
		Slug         string `json:"slug"`
		TableNumber  string `json:"table_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurantID := req.RestaurantID
	if restaurantID == 0 && req.Slug != "" {
		var restaurant models.Restaurant
		if err := sc.DB.Where("slug = ?", req.Slug).First(&restaurant).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
			return
		}
		restaurantID = restaurant.ID
	}
	if restaurantID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id or slug is required"))
		return
	}

	session, created, err := sc.Sessions.OpenSession(restaurantID, req.TableNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	code := http.StatusOK
	message := "Rejoined active session"
	if created {
		code = http.StatusCreated
		message = "Session opened"
	}
	utils.RespondJSON(c, code, message, session)
}

// GetSession returns the session with its orders and the live total.
func (sc *SessionController) GetSession(c *gin.Context) {
	session, err := sc.Sessions.GetByToken(c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orders, err := sc.Sessions.Orders(session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	total, err := services.RecomputeSessionTotal(sc.DB, session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session detail", gin.H{
		"session": session,
		"orders":  orders,
		"total":   total,
	})
}

// CloseSession is the customer picking how to pay.
func (sc *SessionController) CloseSession(c *gin.Context) {
	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.CloseSession(c.Param("token"), req.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session closed for payment", session)
}
