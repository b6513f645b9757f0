package controllers

import (
	"errors"
	"net/http"

	"comart-backend/middleware"
	"comart-backend/models"
	"comart-backend/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartController manages the per-user cart entries consumed at checkout.
type CartController struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCartController creates a CartController.
func NewCartController(carts repository.CartRepository, products repository.ProductRepository, logger *zap.Logger) *CartController {
	return &CartController{carts: carts, products: products, logger: logger}
}

type addCartRequest struct {
	Product string `json:"product" binding:"required"`
	Amount  int    `json:"amount"`
}

// AddCart puts a product into the caller's cart. A product can appear at
// most once per user; a second add is rejected rather than merged.
func (cc *CartController) AddCart(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req addCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		req.Amount = 1
	}

	productID, err := parseObjectID(req.Product)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}
	if _, err := cc.products.FindByID(c.Request.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		cc.logger.Error("Failed to look up product for cart", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	entry := &models.CartEntry{User: user.ID, Product: productID, Amount: req.Amount}
	if err := cc.carts.Insert(c.Request.Context(), entry); err != nil {
		if errors.Is(err, repository.ErrCartEntryExists) {
			respondError(c, http.StatusBadRequest, "Product is already in cart")
			return
		}
		cc.logger.Error("Failed to add cart entry",
			zap.String("user", user.ID.Hex()),
			zap.String("product", productID.Hex()),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add to cart")
		return
	}
	respondOK(c, http.StatusCreated, entry)
}

// GetCart returns the cart entries for the user in the path. Users may only
// read their own cart; admins may read any.
func (cc *CartController) GetCart(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	target, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}
	if target != user.ID && user.Role != models.RoleAdmin {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	entries, err := cc.carts.FindByUser(c.Request.Context(), target)
	if err != nil {
		cc.logger.Error("Failed to fetch cart", zap.String("user", target.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	respondOK(c, http.StatusOK, entries)
}
