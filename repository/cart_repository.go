package repository

import (
	"context"
	"fmt"
	"time"

	"comart-backend/database"
	"comart-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	Insert(ctx context.Context, entry *models.CartEntry) error
	FindByUser(ctx context.Context, user primitive.ObjectID) ([]models.CartEntry, error)
	// DeleteByUser removes every cart entry for the user and returns how many
	// were removed. Checkout calls this once, after the order is persisted.
	DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error)
}

// MongoCartRepository implements CartRepository on the carts collection.
type MongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository creates a new MongoCartRepository.
func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &MongoCartRepository{collection: db.Collection(database.CartsCollection)}
}

func (r *MongoCartRepository) Insert(ctx context.Context, entry *models.CartEntry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCartEntryExists
		}
		return fmt.Errorf("failed to insert cart entry: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	return nil
}

func (r *MongoCartRepository) FindByUser(ctx context.Context, user primitive.ObjectID) ([]models.CartEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user": user})
	if err != nil {
		return nil, fmt.Errorf("failed to find cart entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.CartEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cart entries: %w", err)
	}
	return entries, nil
}

func (r *MongoCartRepository) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user": user})
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return res.DeletedCount, nil
}
