package controllers

import (
	"errors"
	"net/http"

	"comart-backend/models"
	"comart-backend/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// CategoryController handles category CRUD. Writes are admin only.
type CategoryController struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryController creates a CategoryController.
func NewCategoryController(categories repository.CategoryRepository, logger *zap.Logger) *CategoryController {
	return &CategoryController{categories: categories, logger: logger}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddCategory creates a new category.
func (cc *CategoryController) AddCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := cc.categories.FindByName(c.Request.Context(), req.Name); err == nil {
		respondError(c, http.StatusBadRequest, "Category already exists")
		return
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := cc.categories.Insert(c.Request.Context(), category); err != nil {
		cc.logger.Error("Failed to create category", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Adding category failed")
		return
	}
	respondOK(c, http.StatusCreated, category)
}

// GetCategories lists all categories.
func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, err := cc.categories.FindAll(c.Request.Context())
	if err != nil {
		cc.logger.Error("Failed to list categories", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	respondOK(c, http.StatusOK, categories)
}

// UpdateCategory updates a category's name or description.
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
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
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	updated, err := cc.categories.Update(c.Request.Context(), id, updates)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		cc.logger.Error("Failed to update category", zap.String("category", id.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to update category")
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// DeleteCategory removes a category.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.categories.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		cc.logger.Error("Failed to delete category", zap.String("category", id.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Category deleted"})
}
