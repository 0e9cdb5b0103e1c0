package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menumate/menumate/middlewares"
	"github.com/menumate/menumate/services"
	"github.com/menumate/menumate/utils"
)

type PaymentController struct {
	DB           *gorm.DB
	Payments     *services.PaymentService
	GatewayKeyID string
}

func NewPaymentController(db *gorm.DB, payments *services.PaymentService, gatewayKeyID string) *PaymentController {
	return &PaymentController{DB: db, Payments: payments, GatewayKeyID: gatewayKeyID}
}

// GatewayConfig exposes the publishable gateway key the checkout widget
// needs. The secret never leaves the server.
func (pc *PaymentController) GatewayConfig(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Gateway config", gin.H{
		"key_id": pc.GatewayKeyID,
	})
}

// VerifyOnlinePayment is the gateway callback: the signature is recomputed
// locally and a mismatch rejects the request before any state changes.
func (pc *PaymentController) VerifyOnlinePayment(c *gin.Context) {
	var req struct {
		SessionToken     string `json:"session_token" binding:"required"`
		GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
		GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
		Signature        string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := pc.Payments.VerifyOnlinePayment(
		req.SessionToken, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Online payment verified for session %d", session.ID)
	utils.RespondJSON(c, http.StatusOK, "Payment verified", session)
}

// ConfirmCounterPayment is the owner confirming cash was received at the
// counter. Repeating it on a paid session is a conflict, not a replay.
func (pc *PaymentController) ConfirmCounterPayment(c *gin.Context) {
	sessionID, _ := strconv.Atoi(c.Param("session_id"))

	session, err := pc.Payments.ConfirmCounterPayment(middlewares.RestaurantID(c), uint(sessionID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Counter payment confirmed for session %d", session.ID)
	utils.RespondJSON(c, http.StatusOK, "Payment confirmed", session)
}
