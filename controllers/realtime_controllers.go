package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
	"github.com/menumate/menumate/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type RealtimeController struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewRealtimeController(db *gorm.DB, hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{DB: db, Hub: hub}
}

// PollOrders is the pull contract: current snapshot plus a server
// timestamp, re-fetched by the dashboard at a fixed interval.
func (rc *RealtimeController) PollOrders(c *gin.Context) {
	query := rc.DB.Preload("Items").
		Where("restaurant_id = ?", middlewares.RestaurantID(c)).
		Order("created_at desc").
		Limit(100)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      orders,
		"timestamp": time.Now().Unix(),
	})
}

// PollSessions snapshots the restaurant's sessions the same way.
func (rc *RealtimeController) PollSessions(c *gin.Context) {
	query := rc.DB.Where("restaurant_id = ?", middlewares.RestaurantID(c)).
		Order("created_at desc").
		Limit(100)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var sessions []models.TableSession
	if err := query.Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      sessions,
		"timestamp": time.Now().Unix(),
	})
}

// RestaurantWS subscribes an owner dashboard to its restaurant channel.
func (rc *RealtimeController) RestaurantWS(c *gin.Context) {
	restaurantID := middlewares.RestaurantID(c)
	if restaurantID == 0 {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := realtime.NewClient(realtime.RestaurantChannel(restaurantID), ws)
	rc.Hub.Register(client)
	defer rc.Hub.Unregister(client)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

// SessionWS subscribes a customer to their session channel; the token is
// the only credential.
func (rc *RealtimeController) SessionWS(c *gin.Context) {
	token := c.Param("token")

	var session models.TableSession
	if err := rc.DB.Where("session_token = ?", token).First(&session).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("session not found"))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := realtime.NewClient(realtime.SessionChannel(token), ws)
	rc.Hub.Register(client)
	defer rc.Hub.Unregister(client)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
