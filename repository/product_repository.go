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

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByNameAndVendor(ctx context.Context, name string, vendor primitive.ObjectID) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByVendor(ctx context.Context, vendor primitive.ObjectID) ([]models.Product, error)
	FindByCategory(ctx context.Context, category primitive.ObjectID) ([]models.Product, error)
	FindFeatured(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// DecrementQuantity applies an atomic $inc of -amount to the product's
	// stock. With allowNegative=false the update is conditional on enough
	// stock being present and reports ErrInsufficientStock otherwise.
	DecrementQuantity(ctx context.Context, id primitive.ObjectID, amount int, allowNegative bool) error
}

// MongoProductRepository implements ProductRepository on the products collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{collection: db.Collection(database.ProductsCollection)}
}

func (r *MongoProductRepository) Insert(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) FindByNameAndVendor(ctx context.Context, name string, vendor primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"name": name, "vendor": vendor}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProductRepository) FindByVendor(ctx context.Context, vendor primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"vendor": vendor})
}

func (r *MongoProductRepository) FindByCategory(ctx context.Context, category primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"category": category})
}

func (r *MongoProductRepository) FindFeatured(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{"featured": true})
}

// Search runs a case-insensitive text search over product names and
// descriptions, backed by the text index created at startup.
func (r *MongoProductRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	filter := bson.M{"$text": bson.M{"$search": query, "$caseSensitive": false}}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Product, error) {
	updates["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) DecrementQuantity(ctx context.Context, id primitive.ObjectID, amount int, allowNegative bool) error {
	filter := bson.M{"_id": id}
	if !allowNegative {
		filter["quantity"] = bson.M{"$gte": amount}
	}
	// Pipeline update so the soldOut flag tracks the new quantity in the
	// same atomic write.
	update := bson.A{
		bson.M{"$set": bson.M{"quantity": bson.M{"$subtract": bson.A{"$quantity", amount}}}},
		bson.M{"$set": bson.M{
			"soldOut":   bson.M{"$lte": bson.A{"$quantity", 0}},
			"updatedAt": time.Now().UTC(),
		}},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement product quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the product is gone or the stock guard rejected the update.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
