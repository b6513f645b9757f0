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
)

// RatingRepository defines the interface for rating data access.
type RatingRepository interface {
	Insert(ctx context.Context, rating *models.Rating) error
	FindByProduct(ctx context.Context, product primitive.ObjectID) ([]models.Rating, error)
	FindByUserAndProduct(ctx context.Context, user, product primitive.ObjectID) (*models.Rating, error)
}

// MongoRatingRepository implements RatingRepository.
type MongoRatingRepository struct {
	collection *mongo.Collection
}

// NewMongoRatingRepository creates a new MongoRatingRepository.
func NewMongoRatingRepository(db *mongo.Database) RatingRepository {
	return &MongoRatingRepository{collection: db.Collection(database.RatingsCollection)}
}

func (r *MongoRatingRepository) Insert(ctx context.Context, rating *models.Rating) error {
	now := time.Now().UTC()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, rating)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rating.ID = oid
	}
	return nil
}

func (r *MongoRatingRepository) FindByProduct(ctx context.Context, product primitive.ObjectID) ([]models.Rating, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"product": product})
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var ratings []models.Rating
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}
	return ratings, nil
}

func (r *MongoRatingRepository) FindByUserAndProduct(ctx context.Context, user, product primitive.ObjectID) (*models.Rating, error) {
	var rating models.Rating
	err := r.collection.FindOne(ctx, bson.M{"user": user, "product": product}).Decode(&rating)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return &rating, nil
}
