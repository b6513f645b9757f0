package controllers

import (
	"net/http"

	"comart-backend/middleware"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentController exposes the outbound gateway operations: initializing a
// hosted-checkout transaction and verifying one.
type PaymentController struct {
	chapa  *services.ChapaClient
	logger *zap.Logger
}

// NewPaymentController creates a PaymentController.
func NewPaymentController(chapa *services.ChapaClient, logger *zap.Logger) *PaymentController {
	return &PaymentController{chapa: chapa, logger: logger}
}

// InitializePayment starts a gateway transaction for the buyer and returns
// the checkout URL plus the transaction reference to attach at checkout.
func (pc *PaymentController) InitializePayment(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req services.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		req.Email = user.Email
	}
	if req.Currency == "" {
		req.Currency = "ETB"
	}

	resp, err := pc.chapa.InitializeTransaction(c.Request.Context(), &req)
	if err != nil {
		pc.logger.Error("Payment initialization failed", zap.String("user", user.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Payment failed")
		return
	}

	respondOK(c, http.StatusCreated, resp)
}

// VerifyPayment asks the gateway for the status of a transaction.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	txRef := c.Param("tx")
	if txRef == "" {
		respondError(c, http.StatusBadRequest, "Transaction reference is required")
		return
	}

	resp, err := pc.chapa.VerifyTransaction(c.Request.Context(), txRef)
	if err != nil {
		pc.logger.Error("Payment verification failed", zap.String("tx_ref", txRef), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Payment failed")
		return
	}

	respondOK(c, http.StatusOK, resp)
}
