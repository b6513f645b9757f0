package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"comart-backend/repository"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// webhookPayload is the slice of the gateway callback body we act on. The
// lookup is keyed on tx_ref only; the gateway never knows our order IDs.
type webhookPayload struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

// PaymentWebhook processes a gateway payment callback: it authenticates the
// delivery against the shared webhook secret, then settles the referenced
// order. Signature verification runs before any database access. Duplicate
// deliveries are acknowledged as no-ops; persistence failures return a server
// error so the gateway redelivers.
func (oc *OrderController) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := oc.chapa.VerifyWebhookSignature(body, c.Request.Header); err != nil {
		oc.logger.Warn("Rejected webhook with bad signature", zap.String("ip", c.ClientIP()))
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.TxRef == "" {
		respondError(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	result, err := oc.settlement.Settle(c.Request.Context(), payload.TxRef)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		oc.logger.Error("Webhook settlement failed", zap.String("tx_ref", payload.TxRef), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Update order failed")
		return
	}

	// Stock changed; drop stale cached product reads.
	if result.Status != services.SettlementAlreadyProcessed && result.Order != nil {
		for _, item := range result.Order.Products {
			oc.cache.Invalidate(c.Request.Context(), item.Product.Hex())
		}
	}

	respondOK(c, http.StatusOK, result)
}
