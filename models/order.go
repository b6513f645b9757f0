package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment lifecycle. An order is created pending and moves to paid exactly
// once, when the gateway webhook confirms the transaction. Paid is terminal.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// LineItem captures a product reference together with the quantity and the
// unit price at the moment the order was placed. The price is a snapshot and
// is never recomputed from the live product document.
type LineItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Buyer          primitive.ObjectID `bson:"buyer" json:"buyer"`
	Products       []LineItem         `bson:"products" json:"products"`
	TotalAmount    float64            `bson:"totalAmount" json:"totalAmount"`
	TransactionRef string             `bson:"transactionRef" json:"transactionRef"`
	PaymentStatus  string             `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
