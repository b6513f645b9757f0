package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comart-backend/models"
	"comart-backend/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Gateway abstracts the payment-gateway collaborator consulted at checkout
// time for a transaction reference.
type Gateway interface {
	GenerateTransactionRef() string
}

// EventPublisher fans out order lifecycle events. Implementations are
// best-effort: settlement logs publish failures and never fails on them.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

// CheckoutItem is one cart line in a create-order request.
type CheckoutItem struct {
	Product string `json:"product" binding:"required"`
	Amount  int    `json:"amount" binding:"required,min=1"`
}

// CreateOrderRequest is the checkout payload. TxRef is the gateway reference
// obtained during payment initialization; when absent a fresh one is issued.
type CreateOrderRequest struct {
	CartItems []CheckoutItem `json:"cartItems"`
	TxRef     string         `json:"tx_ref"`
}

// SettlementStatus is the outcome of a webhook settlement.
type SettlementStatus string

const (
	SettlementPaid             SettlementStatus = "paid"
	SettlementAlreadyProcessed SettlementStatus = "already_processed"
	SettlementPartiallyPaid    SettlementStatus = "partially_paid"
)

// FailedItem reports a line item whose stock adjustment could not be applied.
// The order stays paid; these are left for manual reconciliation.
type FailedItem struct {
	Product string `json:"product"`
	Reason  string `json:"reason"`
}

// SettlementResult is the outcome of processing one webhook delivery.
type SettlementResult struct {
	Status      SettlementStatus `json:"status"`
	Order       *models.Order    `json:"order,omitempty"`
	FailedItems []FailedItem     `json:"failed_items,omitempty"`
}

// SettlementService owns the order lifecycle from checkout through payment
// confirmation to inventory adjustment.
type SettlementService struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	products repository.ProductRepository
	gateway  Gateway
	events   EventPublisher
	logger   *zap.Logger

	// allowNegativeStock controls whether settlement may drive product
	// quantities below zero (oversell tolerance).
	allowNegativeStock bool
}

// NewSettlementService wires the settlement engine. events may be nil when no
// broker is configured.
func NewSettlementService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	gateway Gateway,
	events EventPublisher,
	logger *zap.Logger,
	allowNegativeStock bool,
) *SettlementService {
	return &SettlementService{
		orders:             orders,
		carts:              carts,
		products:           products,
		gateway:            gateway,
		events:             events,
		logger:             logger,
		allowNegativeStock: allowNegativeStock,
	}
}

// CreateOrder produces a pending order from the buyer's cart lines. Unit
// prices are snapshotted from the current product documents; stock is not
// touched until the payment webhook settles the order. The buyer's cart is
// cleared only after the order is persisted, and a cart-clear failure does
// not undo the order.
func (s *SettlementService) CreateOrder(ctx context.Context, buyer primitive.ObjectID, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.CartItems) == 0 {
		return nil, ErrEmptyCart
	}

	lineItems := make([]models.LineItem, 0, len(req.CartItems))
	var totalAmount float64

	for _, item := range req.CartItems {
		if item.Amount < 1 {
			return nil, ErrInvalidQuantity
		}

		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return nil, ErrInvalidProductRef
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}

		lineItems = append(lineItems, models.LineItem{
			Product:  product.ID,
			Quantity: item.Amount,
			Price:    product.Price,
		})
		totalAmount += float64(item.Amount) * product.Price
	}

	txRef := req.TxRef
	if txRef == "" {
		txRef = s.gateway.GenerateTransactionRef()
	}

	order := &models.Order{
		Buyer:          buyer,
		Products:       lineItems,
		TotalAmount:    totalAmount,
		TransactionRef: txRef,
		PaymentStatus:  models.PaymentStatusPending,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	// The order stands even if the cart cleanup fails; an out-of-band job can
	// reconcile leftovers.
	if _, err := s.carts.DeleteByUser(ctx, buyer); err != nil {
		s.logger.Warn("Failed to clear cart after order creation",
			zap.String("buyer", buyer.Hex()),
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	}

	s.publishEvent(ctx, models.OrderEventCreated, order)
	return order, nil
}

// Settle processes one webhook delivery for txRef: it atomically transitions
// the matching pending order to paid, then decrements stock for every line
// item. A delivery that finds the order already paid is an idempotent no-op,
// which is what makes gateway redelivery safe. Per-item stock failures are
// reported but never roll back the paid transition.
func (s *SettlementService) Settle(ctx context.Context, txRef string) (*SettlementResult, error) {
	order, err := s.orders.MarkPaidByTransactionRef(ctx, txRef)
	if err != nil {
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}

		// No pending order matched: either a duplicate delivery for an order
		// that settled already, or a reference we never issued.
		existing, findErr := s.orders.FindByTransactionRef(ctx, txRef)
		if findErr != nil {
			return nil, findErr
		}

		// Acknowledge only a genuinely paid order. Anything else (a pending
		// order the CAS raced, a future status) must not be acked, or the
		// gateway stops redelivering and the settlement is lost.
		if existing.PaymentStatus != models.PaymentStatusPaid {
			return nil, fmt.Errorf("order %s for %s is %s and could not be settled",
				existing.ID.Hex(), txRef, existing.PaymentStatus)
		}

		s.logger.Info("Skipping duplicate webhook delivery",
			zap.String("transaction_ref", txRef),
			zap.String("order_id", existing.ID.Hex()),
		)
		return &SettlementResult{Status: SettlementAlreadyProcessed, Order: existing}, nil
	}

	var failed []FailedItem
	for _, item := range order.Products {
		err := s.products.DecrementQuantity(ctx, item.Product, item.Quantity, s.allowNegativeStock)
		if err == nil {
			continue
		}

		s.logger.Error("Stock adjustment failed for settled order",
			zap.String("order_id", order.ID.Hex()),
			zap.String("product", item.Product.Hex()),
			zap.Int("quantity", item.Quantity),
			zap.Error(err),
		)
		failed = append(failed, FailedItem{Product: item.Product.Hex(), Reason: err.Error()})
	}

	s.publishEvent(ctx, models.OrderEventPaid, order)

	if len(failed) > 0 {
		return &SettlementResult{Status: SettlementPartiallyPaid, Order: order, FailedItems: failed}, nil
	}
	return &SettlementResult{Status: SettlementPaid, Order: order}, nil
}

func (s *SettlementService) publishEvent(ctx context.Context, eventType string, order *models.Order) {
	if s.events == nil {
		return
	}

	event := models.OrderEvent{
		Type:           eventType,
		OrderID:        order.ID.Hex(),
		BuyerID:        order.Buyer.Hex(),
		TransactionRef: order.TransactionRef,
		TotalAmount:    order.TotalAmount,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
