package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"comart-backend/models"
	"comart-backend/repository"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// knownCategoryRepo resolves one fixed category and panics on everything else.
type knownCategoryRepo struct {
	category *models.Category
}

func (r *knownCategoryRepo) Insert(context.Context, *models.Category) error {
	panic("unexpected call")
}
func (r *knownCategoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	if r.category != nil && r.category.ID == id {
		return r.category, nil
	}
	return nil, repository.ErrCategoryNotFound
}
func (r *knownCategoryRepo) FindByName(context.Context, string) (*models.Category, error) {
	panic("unexpected call")
}
func (r *knownCategoryRepo) FindAll(context.Context) ([]models.Category, error) {
	panic("unexpected call")
}
func (r *knownCategoryRepo) Update(context.Context, primitive.ObjectID, bson.M) (*models.Category, error) {
	panic("unexpected call")
}
func (r *knownCategoryRepo) Delete(context.Context, primitive.ObjectID) error {
	panic("unexpected call")
}

// creatableProductRepo is stubProductRepo plus the two calls AddProduct makes.
type creatableProductRepo struct {
	stubProductRepo
	inserted []*models.Product
}

func (r *creatableProductRepo) FindByNameAndVendor(context.Context, string, primitive.ObjectID) (*models.Product, error) {
	return nil, repository.ErrProductNotFound
}

func (r *creatableProductRepo) Insert(_ context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	r.inserted = append(r.inserted, product)
	return nil
}

// updatableProductRepo is stubProductRepo plus FindByID and an Update that
// captures the document sent to the store.
type updatableProductRepo struct {
	stubProductRepo
	product *models.Product
	updates bson.M
}

func (r *updatableProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	if r.product != nil && r.product.ID == id {
		return r.product, nil
	}
	return nil, repository.ErrProductNotFound
}

func (r *updatableProductRepo) Update(_ context.Context, _ primitive.ObjectID, updates bson.M) (*models.Product, error) {
	r.updates = updates
	return r.product, nil
}

func newProductRouter(products repository.ProductRepository, categories repository.CategoryRepository, vendor *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	cache := services.NewProductCache(nil, log)
	controller := NewProductController(products, categories, cache, nil, "", log)

	router := gin.New()
	router.POST("/api/products", asUser(vendor), controller.AddProduct)
	router.PUT("/api/products/:id", asUser(vendor), controller.UpdateProduct)
	return router
}

func TestAddProduct(t *testing.T) {
	vendor := &models.User{ID: primitive.NewObjectID(), Role: models.RoleVendor}
	category := &models.Category{ID: primitive.NewObjectID(), Name: "electronics"}

	post := func(router *gin.Engine, quantity int) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(gin.H{
			"name":        "Desk Lamp",
			"description": "Adjustable desk lamp",
			"category":    category.ID.Hex(),
			"price":       45.0,
			"quantity":    quantity,
		})
		req, _ := http.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		return recorder
	}

	t.Run("Success - 201 with stocked product", func(t *testing.T) {
		products := &creatableProductRepo{}
		router := newProductRouter(products, &knownCategoryRepo{category: category}, vendor)

		recorder := post(router, 3)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Len(t, products.inserted, 1)
		assert.Equal(t, 3, products.inserted[0].Quantity)
		assert.False(t, products.inserted[0].SoldOut)
	})

	t.Run("Unknown category - 400", func(t *testing.T) {
		products := &creatableProductRepo{}
		router := newProductRouter(products, &knownCategoryRepo{}, vendor)

		recorder := post(router, 3)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Empty(t, products.inserted)
	})
}

func TestUpdateProductStockFlag(t *testing.T) {
	vendor := &models.User{ID: primitive.NewObjectID(), Role: models.RoleVendor}
	category := &models.Category{ID: primitive.NewObjectID(), Name: "electronics"}

	put := func(router *gin.Engine, productID primitive.ObjectID, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPut, "/api/products/"+productID.Hex(), bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		return recorder
	}

	newFixture := func(quantity int, soldOut bool) (*updatableProductRepo, *gin.Engine) {
		products := &updatableProductRepo{product: &models.Product{
			ID:       primitive.NewObjectID(),
			Name:     "Desk Lamp",
			Category: category.ID,
			Price:    45,
			Quantity: quantity,
			SoldOut:  soldOut,
			Vendor:   vendor.ID,
		}}
		return products, newProductRouter(products, &knownCategoryRepo{category: category}, vendor)
	}

	t.Run("Quantity driven to zero marks the product sold out", func(t *testing.T) {
		products, router := newFixture(5, false)

		recorder := put(router, products.product.ID, `{"quantity": 0}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 0, products.updates["quantity"])
		assert.Equal(t, true, products.updates["soldOut"])
	})

	t.Run("Restock clears the sold-out flag", func(t *testing.T) {
		products, router := newFixture(0, true)

		recorder := put(router, products.product.ID, `{"quantity": 10}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 10, products.updates["quantity"])
		assert.Equal(t, false, products.updates["soldOut"])
	})

	t.Run("Update without quantity leaves the flag alone", func(t *testing.T) {
		products, router := newFixture(5, false)

		recorder := put(router, products.product.ID, `{"price": 60}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.NotContains(t, products.updates, "soldOut")
		assert.NotContains(t, products.updates, "quantity")
	})
}
