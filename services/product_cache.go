package services

import (
	"context"
	"encoding/json"
	"time"

	"comart-backend/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productCachePrefix  = "product:detail:"
	productListCacheKey = "products:all"
	productCacheTTL     = 5 * time.Minute
)

// ProductCache is a read-through Redis cache in front of the product
// collection. All methods are nil-safe so the service runs without Redis;
// cache failures degrade to the database silently.
type ProductCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewProductCache creates a ProductCache. client may be nil to disable caching.
func NewProductCache(client *redis.Client, logger *zap.Logger) *ProductCache {
	return &ProductCache{client: client, logger: logger}
}

// GetProduct returns a cached product detail, if present.
func (c *ProductCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, productCachePrefix+id).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		c.logger.Warn("Failed to unmarshal cached product", zap.String("product_id", id), zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProduct caches a product detail.
func (c *ProductCache) SetProduct(ctx context.Context, product *models.Product) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productCachePrefix+product.ID.Hex(), data, productCacheTTL).Err(); err != nil {
		c.logger.Warn("Failed to cache product", zap.String("product_id", product.ID.Hex()), zap.Error(err))
	}
}

// GetProductList returns the cached full product listing, if present.
func (c *ProductCache) GetProductList(ctx context.Context) ([]models.Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, productListCacheKey).Result()
	if err != nil {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetProductList caches the full product listing.
func (c *ProductCache) SetProductList(ctx context.Context, products []models.Product) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productListCacheKey, data, productCacheTTL).Err(); err != nil {
		c.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

// Invalidate drops the cached detail for a product plus the listing cache.
// Called on every product write and on settlement stock adjustments.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, productCachePrefix+id, productListCacheKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
	}
}
