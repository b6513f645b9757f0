package models

import "time"

// Order event types published to the order-events topic.
const (
	OrderEventCreated = "order.created"
	OrderEventPaid    = "order.paid"
)

// OrderEvent is the payload fanned out to Kafka (and optionally SNS) when an
// order is created or settled. Consumers are downstream services; delivery is
// best-effort and never blocks the request path.
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	BuyerID        string    `json:"buyer_id"`
	TransactionRef string    `json:"transaction_ref"`
	TotalAmount    float64   `json:"total_amount"`
	Timestamp      time.Time `json:"timestamp"`
}
