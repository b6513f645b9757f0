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

// RatingController handles product ratings. One rating per (user, product).
type RatingController struct {
	ratings  repository.RatingRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewRatingController creates a RatingController.
func NewRatingController(ratings repository.RatingRepository, products repository.ProductRepository, logger *zap.Logger) *RatingController {
	return &RatingController{ratings: ratings, products: products, logger: logger}
}

type addRatingRequest struct {
	Product string `json:"product" binding:"required"`
	Rate    int    `json:"rate" binding:"required"`
}

// AddRating records the caller's rating for a product.
func (rc *RatingController) AddRating(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req addRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rate < 1 || req.Rate > 5 {
		respondError(c, http.StatusBadRequest, "Rate must be between 1 and 5")
		return
	}

	productID, err := parseObjectID(req.Product)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}
	if _, err := rc.products.FindByID(c.Request.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		rc.logger.Error("Failed to look up product for rating", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add rating")
		return
	}

	if _, err := rc.ratings.FindByUserAndProduct(c.Request.Context(), user.ID, productID); err == nil {
		respondError(c, http.StatusBadRequest, "You have already rated this product")
		return
	} else if !errors.Is(err, repository.ErrRatingNotFound) {
		rc.logger.Error("Failed to check existing rating", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add rating")
		return
	}

	rating := &models.Rating{User: user.ID, Product: productID, Rate: req.Rate}
	if err := rc.ratings.Insert(c.Request.Context(), rating); err != nil {
		rc.logger.Error("Failed to insert rating",
			zap.String("user", user.ID.Hex()),
			zap.String("product", productID.Hex()),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add rating")
		return
	}
	respondOK(c, http.StatusCreated, rating)
}

// GetRatings lists all ratings for a product.
func (rc *RatingController) GetRatings(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}

	ratings, err := rc.ratings.FindByProduct(c.Request.Context(), productID)
	if err != nil {
		rc.logger.Error("Failed to fetch ratings", zap.String("product", productID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch ratings")
		return
	}
	respondOK(c, http.StatusOK, ratings)
}
