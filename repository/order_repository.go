package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comart-backend/database"
	"comart-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByTransactionRef(ctx context.Context, txRef string) (*models.Order, error)
	// MarkPaidByTransactionRef atomically moves a pending order to paid and
	// returns the updated document. It matches on transactionRef AND the
	// pending status, so concurrent calls for the same reference succeed at
	// most once; the losers get ErrOrderNotFound.
	MarkPaidByTransactionRef(ctx context.Context, txRef string) (*models.Order, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	FindByBuyer(ctx context.Context, buyer primitive.ObjectID, page, limit int) ([]models.Order, int64, error)
	FindByVendor(ctx context.Context, vendor primitive.ObjectID, page, limit int) ([]models.Order, int64, error)
}

// MongoOrderRepository implements OrderRepository on the orders collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoOrderRepository{collection: db.Collection(database.OrdersCollection)}
}

// Insert persists a new order as a single document write. The unique index on
// transactionRef rejects duplicates.
func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateTransactionRef
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// FindByTransactionRef retrieves an order by its gateway transaction reference.
func (r *MongoOrderRepository) FindByTransactionRef(ctx context.Context, txRef string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"transactionRef": txRef}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by transactionRef: %w", err)
	}
	return &order, nil
}

// MarkPaidByTransactionRef performs the pending-to-paid compare-and-set.
func (r *MongoOrderRepository) MarkPaidByTransactionRef(ctx context.Context, txRef string) (*models.Order, error) {
	filter := bson.M{
		"transactionRef": txRef,
		"paymentStatus":  models.PaymentStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"paymentStatus": models.PaymentStatusPaid,
		"updatedAt":     time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return &order, nil
}

// FindAll retrieves all orders with pagination, newest first.
func (r *MongoOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return r.paginatedFind(ctx, bson.M{}, page, limit)
}

// FindByBuyer retrieves a buyer's orders with pagination.
func (r *MongoOrderRepository) FindByBuyer(ctx context.Context, buyer primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	return r.paginatedFind(ctx, bson.M{"buyer": buyer}, page, limit)
}

// FindByVendor retrieves orders containing at least one product owned by the
// vendor, joined through the products collection.
func (r *MongoOrderRepository) FindByVendor(ctx context.Context, vendor primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	offset := (page - 1) * limit

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         database.ProductsCollection,
			"localField":   "products.product",
			"foreignField": "_id",
			"as":           "orderedProducts",
		}}},
		{{Key: "$match", Value: bson.M{"orderedProducts.vendor": vendor}}},
		{{Key: "$project", Value: bson.M{"orderedProducts": 0}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate vendor orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("failed to decode vendor orders: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return orders, total, nil
}

func (r *MongoOrderRepository) paginatedFind(ctx context.Context, filter bson.M, page, limit int) ([]models.Order, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * limit
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, total, nil
}
