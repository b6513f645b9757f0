package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

const webhookSecret = "whsec-controller-test"

// Stub repositories with function fields. Any call a test did not wire
// panics, which is how the no-store-access-before-verification test works.

type stubOrderRepo struct {
	markPaid  func(ctx context.Context, txRef string) (*models.Order, error)
	findByRef func(ctx context.Context, txRef string) (*models.Order, error)
}

func (s *stubOrderRepo) Insert(context.Context, *models.Order) error { panic("unexpected Insert") }
func (s *stubOrderRepo) FindByTransactionRef(ctx context.Context, txRef string) (*models.Order, error) {
	if s.findByRef == nil {
		panic("unexpected FindByTransactionRef")
	}
	return s.findByRef(ctx, txRef)
}
func (s *stubOrderRepo) MarkPaidByTransactionRef(ctx context.Context, txRef string) (*models.Order, error) {
	if s.markPaid == nil {
		panic("unexpected MarkPaidByTransactionRef")
	}
	return s.markPaid(ctx, txRef)
}
func (s *stubOrderRepo) FindAll(context.Context, int, int) ([]models.Order, int64, error) {
	panic("unexpected FindAll")
}
func (s *stubOrderRepo) FindByBuyer(context.Context, primitive.ObjectID, int, int) ([]models.Order, int64, error) {
	panic("unexpected FindByBuyer")
}
func (s *stubOrderRepo) FindByVendor(context.Context, primitive.ObjectID, int, int) ([]models.Order, int64, error) {
	panic("unexpected FindByVendor")
}

type stubProductRepo struct {
	decrement func(ctx context.Context, id primitive.ObjectID, amount int, allowNegative bool) error
}

func (s *stubProductRepo) Insert(context.Context, *models.Product) error { panic("unexpected call") }
func (s *stubProductRepo) FindByID(context.Context, primitive.ObjectID) (*models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) FindByNameAndVendor(context.Context, string, primitive.ObjectID) (*models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) FindAll(context.Context) ([]models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) FindByVendor(context.Context, primitive.ObjectID) ([]models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) FindByCategory(context.Context, primitive.ObjectID) ([]models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) FindFeatured(context.Context) ([]models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) Search(context.Context, string) ([]models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) Update(context.Context, primitive.ObjectID, bson.M) (*models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) Delete(context.Context, primitive.ObjectID) (*models.Product, error) {
	panic("unexpected call")
}
func (s *stubProductRepo) DecrementQuantity(ctx context.Context, id primitive.ObjectID, amount int, allowNegative bool) error {
	if s.decrement == nil {
		panic("unexpected DecrementQuantity")
	}
	return s.decrement(ctx, id, amount, allowNegative)
}

type stubCartRepo struct{}

func (stubCartRepo) Insert(context.Context, *models.CartEntry) error { panic("unexpected call") }
func (stubCartRepo) FindByUser(context.Context, primitive.ObjectID) ([]models.CartEntry, error) {
	panic("unexpected call")
}
func (stubCartRepo) DeleteByUser(context.Context, primitive.ObjectID) (int64, error) {
	panic("unexpected call")
}

func newWebhookRouter(orders repository.OrderRepository, products repository.ProductRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	chapa := services.NewChapaClient("sk-test", webhookSecret, "", log)
	settlement := services.NewSettlementService(orders, stubCartRepo{}, products, chapa, nil, log, false)
	controller := NewOrderController(settlement, orders, chapa, nil, log)

	router := gin.New()
	router.POST("/api/orders/update", controller.PaymentWebhook)
	return router
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/orders/update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestPaymentWebhook(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	settledOrder := func() *models.Order {
		return &models.Order{
			ID:             primitive.NewObjectID(),
			Buyer:          primitive.NewObjectID(),
			TransactionRef: "TX-WEBHOOK000000001",
			PaymentStatus:  models.PaymentStatusPaid,
			TotalAmount:    250,
			Products: []models.LineItem{
				{Product: p1, Quantity: 2, Price: 100},
				{Product: p2, Quantity: 1, Price: 50},
			},
		}
	}
	validBody := []byte(`{"tx_ref":"TX-WEBHOOK000000001","status":"success"}`)

	t.Run("Bad signature - 401 before any store access", func(t *testing.T) {
		// Both stubs panic on every method, so reaching the store fails the test.
		router := newWebhookRouter(&stubOrderRepo{}, &stubProductRepo{})

		recorder := postWebhook(router, validBody, map[string]string{
			services.SignatureHeader: "deadbeef",
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Not authorized")
	})

	t.Run("Missing signature - 401", func(t *testing.T) {
		router := newWebhookRouter(&stubOrderRepo{}, &stubProductRepo{})

		recorder := postWebhook(router, validBody, nil)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Success - 200 with paid result and decrements", func(t *testing.T) {
		decrements := map[string]int{}
		orders := &stubOrderRepo{
			markPaid: func(_ context.Context, txRef string) (*models.Order, error) {
				assert.Equal(t, "TX-WEBHOOK000000001", txRef)
				return settledOrder(), nil
			},
		}
		products := &stubProductRepo{
			decrement: func(_ context.Context, id primitive.ObjectID, amount int, _ bool) error {
				decrements[id.Hex()] += amount
				return nil
			},
		}
		router := newWebhookRouter(orders, products)

		recorder := postWebhook(router, validBody, map[string]string{
			services.SignatureHeader: sign(validBody),
		})

		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Status string `json:"status"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "paid", resp.Data.Status)
		assert.Equal(t, 2, decrements[p1.Hex()])
		assert.Equal(t, 1, decrements[p2.Hex()])
	})

	t.Run("Legacy signature header accepted", func(t *testing.T) {
		orders := &stubOrderRepo{
			markPaid: func(context.Context, string) (*models.Order, error) {
				return settledOrder(), nil
			},
		}
		products := &stubProductRepo{
			decrement: func(context.Context, primitive.ObjectID, int, bool) error { return nil },
		}
		router := newWebhookRouter(orders, products)

		recorder := postWebhook(router, validBody, map[string]string{
			services.LegacySignatureHeader: sign(validBody),
		})

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Duplicate delivery - 200 no-op, stock untouched", func(t *testing.T) {
		orders := &stubOrderRepo{
			markPaid: func(context.Context, string) (*models.Order, error) {
				return nil, repository.ErrOrderNotFound
			},
			findByRef: func(context.Context, string) (*models.Order, error) {
				return settledOrder(), nil
			},
		}
		// Panicking product stub proves no decrement happens on redelivery.
		router := newWebhookRouter(orders, &stubProductRepo{})

		recorder := postWebhook(router, validBody, map[string]string{
			services.SignatureHeader: sign(validBody),
		})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "already_processed")
	})

	t.Run("Unknown reference - 404", func(t *testing.T) {
		orders := &stubOrderRepo{
			markPaid: func(context.Context, string) (*models.Order, error) {
				return nil, repository.ErrOrderNotFound
			},
			findByRef: func(context.Context, string) (*models.Order, error) {
				return nil, repository.ErrOrderNotFound
			},
		}
		router := newWebhookRouter(orders, &stubProductRepo{})

		recorder := postWebhook(router, validBody, map[string]string{
			services.SignatureHeader: sign(validBody),
		})

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Storage failure - 500 so the gateway redelivers", func(t *testing.T) {
		orders := &stubOrderRepo{
			markPaid: func(context.Context, string) (*models.Order, error) {
				return nil, assert.AnError
			},
		}
		router := newWebhookRouter(orders, &stubProductRepo{})

		recorder := postWebhook(router, validBody, map[string]string{
			services.SignatureHeader: sign(validBody),
		})

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})

	t.Run("Signed but malformed payload - 400", func(t *testing.T) {
		body := []byte(`{"status":"success"}`)
		router := newWebhookRouter(&stubOrderRepo{}, &stubProductRepo{})

		recorder := postWebhook(router, body, map[string]string{
			services.SignatureHeader: sign(body),
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
