package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comart-backend/aws"
	"comart-backend/middleware"
	"comart-backend/models"
	"comart-backend/repository"
	"comart-backend/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductController handles the product catalog: vendor CRUD, public reads
// with Redis caching, search and photo uploads.
type ProductController struct {
	products    repository.ProductRepository
	categories  repository.CategoryRepository
	cache       *services.ProductCache
	awsCfg      *sdkaws.Config
	photoBucket string
	logger      *zap.Logger
}

// NewProductController creates a ProductController. awsCfg may be nil, which
// disables photo uploads.
func NewProductController(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	cache *services.ProductCache,
	awsCfg *sdkaws.Config,
	photoBucket string,
	logger *zap.Logger,
) *ProductController {
	return &ProductController{
		products:    products,
		categories:  categories,
		cache:       cache,
		awsCfg:      awsCfg,
		photoBucket: photoBucket,
		logger:      logger,
	}
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Quantity    int     `json:"quantity" binding:"required,min=0"`
	Photo       string  `json:"photo"`
}

// AddProduct creates a product owned by the authenticated vendor.
func (pc *ProductController) AddProduct(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category format")
		return
	}
	if _, err := pc.categories.FindByID(c.Request.Context(), categoryID); err != nil {
		respondError(c, http.StatusBadRequest, "Category not found")
		return
	}

	if _, err := pc.products.FindByNameAndVendor(c.Request.Context(), req.Name, user.ID); err == nil {
		respondError(c, http.StatusBadRequest, "Product already exists")
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Photo:       req.Photo,
		Category:    categoryID,
		Price:       req.Price,
		Quantity:    req.Quantity,
		SoldOut:     req.Quantity == 0,
		Vendor:      user.ID,
	}
	if err := pc.products.Insert(c.Request.Context(), product); err != nil {
		pc.logger.Error("Failed to create product", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Adding a product failed")
		return
	}

	pc.cache.Invalidate(c.Request.Context(), product.ID.Hex())
	respondOK(c, http.StatusCreated, product)
}

// UpdateProduct updates a product after an ownership check.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	product, ok := pc.ownedProduct(c)
	if !ok {
		return
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Quantity    *int     `json:"quantity"`
		Photo       string   `json:"photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := bson.M{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
		updates["soldOut"] = *req.Quantity <= 0
	}
	if req.Photo != "" {
		updates["photo"] = req.Photo
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	updated, err := pc.products.Update(c.Request.Context(), product.ID, updates)
	if err != nil {
		pc.logger.Error("Failed to update product", zap.String("product", product.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	pc.cache.Invalidate(c.Request.Context(), product.ID.Hex())
	respondOK(c, http.StatusOK, updated)
}

// FeatureProduct toggles the featured flag. Admin only.
func (pc *ProductController) FeatureProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.products.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Product not found")
		return
	}

	updated, err := pc.products.Update(c.Request.Context(), id, bson.M{"featured": !product.Featured})
	if err != nil {
		pc.logger.Error("Failed to toggle featured flag", zap.String("product", id.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	pc.cache.Invalidate(c.Request.Context(), id.Hex())
	respondOK(c, http.StatusOK, updated)
}

// DeleteProduct deletes a product after an ownership check.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	product, ok := pc.ownedProduct(c)
	if !ok {
		return
	}

	deleted, err := pc.products.Delete(c.Request.Context(), product.ID)
	if err != nil {
		pc.logger.Error("Failed to delete product", zap.String("product", product.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	pc.cache.Invalidate(c.Request.Context(), product.ID.Hex())
	respondOK(c, http.StatusOK, deleted)
}

// GetProducts returns the full catalog, served from cache when possible.
func (pc *ProductController) GetProducts(c *gin.Context) {
	if cached, ok := pc.cache.GetProductList(c.Request.Context()); ok {
		respondOK(c, http.StatusOK, cached)
		return
	}

	products, err := pc.products.FindAll(c.Request.Context())
	if err != nil {
		pc.logger.Error("Failed to list products", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	pc.cache.SetProductList(c.Request.Context(), products)
	respondOK(c, http.StatusOK, products)
}

// GetProduct returns one product, served from cache when possible.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if cached, ok := pc.cache.GetProduct(c.Request.Context(), id.Hex()); ok {
		respondOK(c, http.StatusOK, cached)
		return
	}

	product, err := pc.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		pc.logger.Error("Failed to fetch product", zap.String("product", id.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	pc.cache.SetProduct(c.Request.Context(), product)
	respondOK(c, http.StatusOK, product)
}

// GetProductsByVendor returns a vendor's products.
func (pc *ProductController) GetProductsByVendor(c *gin.Context) {
	vendorID, ok := objectIDParam(c, "vendorId")
	if !ok {
		return
	}

	products, err := pc.products.FindByVendor(c.Request.Context(), vendorID)
	if err != nil {
		pc.logger.Error("Failed to list vendor products", zap.String("vendor", vendorID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondOK(c, http.StatusOK, products)
}

// GetProductsByCategory resolves a category by name and lists its products.
func (pc *ProductController) GetProductsByCategory(c *gin.Context) {
	name := strings.ToLower(c.Param("category"))

	category, err := pc.categories.FindByName(c.Request.Context(), name)
	if err != nil {
		respondError(c, http.StatusNotFound, "Category not found")
		return
	}

	products, err := pc.products.FindByCategory(c.Request.Context(), category.ID)
	if err != nil {
		pc.logger.Error("Failed to list category products", zap.String("category", category.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondOK(c, http.StatusOK, products)
}

// GetFeaturedProducts returns the featured subset of the catalog.
func (pc *ProductController) GetFeaturedProducts(c *gin.Context) {
	products, err := pc.products.FindFeatured(c.Request.Context())
	if err != nil {
		pc.logger.Error("Failed to list featured products", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondOK(c, http.StatusOK, products)
}

// SearchProducts runs a text search over product names and descriptions.
func (pc *ProductController) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Param("query"))
	if query == "" {
		respondError(c, http.StatusBadRequest, "Search query is required")
		return
	}

	products, err := pc.products.Search(c.Request.Context(), query)
	if err != nil {
		pc.logger.Error("Product search failed", zap.String("query", query), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Search failed")
		return
	}
	if len(products) == 0 {
		respondError(c, http.StatusNotFound, "Product not found")
		return
	}
	respondOK(c, http.StatusOK, products)
}

// PresignPhotoUpload returns a presigned S3 PUT URL for a product photo.
func (pc *ProductController) PresignPhotoUpload(c *gin.Context) {
	if pc.awsCfg == nil || pc.photoBucket == "" {
		respondError(c, http.StatusServiceUnavailable, "Photo uploads are not configured")
		return
	}

	product, ok := pc.ownedProduct(c)
	if !ok {
		return
	}

	contentType := c.DefaultQuery("contentType", "image/jpeg")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "Only image content types are allowed")
		return
	}

	key := fmt.Sprintf("products/%s/%s", product.ID.Hex(), uuid.NewString())
	url, err := aws.PresignPhotoUpload(c.Request.Context(), *pc.awsCfg, pc.photoBucket, key, contentType, 15*time.Minute)
	if err != nil {
		pc.logger.Error("Failed to presign photo upload", zap.String("product", product.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"upload_url": url,
		"method":     http.MethodPut,
		"key":        key,
		"expires_in": int((15 * time.Minute).Seconds()),
	})
}

// ownedProduct loads the product from the :id param and enforces that the
// caller is its vendor (admins bypass the check).
func (pc *ProductController) ownedProduct(c *gin.Context) (*models.Product, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}

	id, ok := objectIDParam(c, "id")
	if !ok {
		return nil, false
	}

	product, err := pc.products.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Product not found")
		return nil, false
	}
	if user.Role != models.RoleAdmin && product.Vendor != user.ID {
		respondError(c, http.StatusForbidden, "This user is not the owner of this product")
		return nil, false
	}
	return product, true
}
