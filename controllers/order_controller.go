package controllers

import (
	"errors"
	"net/http"

	"comart-backend/middleware"
	"comart-backend/models"
	"comart-backend/repository"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderController handles checkout, order listing and the payment webhook.
type OrderController struct {
	settlement *services.SettlementService
	orders     repository.OrderRepository
	chapa      *services.ChapaClient
	cache      *services.ProductCache
	logger     *zap.Logger
}

// NewOrderController creates an OrderController.
func NewOrderController(
	settlement *services.SettlementService,
	orders repository.OrderRepository,
	chapa *services.ChapaClient,
	cache *services.ProductCache,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		settlement: settlement,
		orders:     orders,
		chapa:      chapa,
		cache:      cache,
		logger:     logger,
	}
}

// CreateOrder places a pending order from the buyer's cart lines.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := oc.settlement.CreateOrder(c.Request.Context(), user.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			respondError(c, http.StatusBadRequest, "No items in the cart")
		case errors.Is(err, services.ErrInvalidProductRef), errors.Is(err, services.ErrInvalidQuantity):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			respondError(c, http.StatusBadRequest, "One of the cart products no longer exists")
		case errors.Is(err, repository.ErrDuplicateTransactionRef):
			respondError(c, http.StatusConflict, "An order already exists for this transaction reference")
		default:
			oc.logger.Error("Order creation failed", zap.String("buyer", user.ID.Hex()), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Adding order failed")
		}
		return
	}

	respondOK(c, http.StatusCreated, order)
}

// GetOrders returns all orders, paginated. Admin only.
func (oc *OrderController) GetOrders(c *gin.Context) {
	page, limit := parsePagination(c)

	orders, total, err := oc.orders.FindAll(c.Request.Context(), page, limit)
	if err != nil {
		oc.logger.Error("Failed to fetch orders", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"orders": orders, "totalOrders": total, "page": page, "limit": limit})
}

// GetMyOrders returns the authenticated buyer's orders, paginated.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	page, limit := parsePagination(c)

	orders, total, err := oc.orders.FindByBuyer(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		oc.logger.Error("Failed to fetch buyer orders", zap.String("buyer", user.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"orders": orders, "totalOrders": total, "page": page, "limit": limit})
}

// GetOrdersByVendor returns orders containing the vendor's products. Vendors
// may only query their own orders; admins may query any vendor.
func (oc *OrderController) GetOrdersByVendor(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	vendorID, ok := objectIDParam(c, "vendorId")
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && user.ID != vendorID {
		respondError(c, http.StatusForbidden, "This user is not authorized to access this route")
		return
	}

	page, limit := parsePagination(c)

	orders, total, err := oc.orders.FindByVendor(c.Request.Context(), vendorID, page, limit)
	if err != nil {
		oc.logger.Error("Failed to fetch vendor orders", zap.String("vendor", vendorID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"orders": orders, "totalOrders": total, "page": page, "limit": limit})
}
