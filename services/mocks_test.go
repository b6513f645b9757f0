package services

import (
	"context"

	"comart-backend/models"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mock Repositories ---

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Insert(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepository) FindByTransactionRef(ctx context.Context, txRef string) (*models.Order, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderRepository) MarkPaidByTransactionRef(ctx context.Context, txRef string) (*models.Order, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}
func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyer primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, buyer, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}
func (m *MockOrderRepository) FindByVendor(ctx context.Context, vendor primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, vendor, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Insert(ctx context.Context, entry *models.CartEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockCartRepository) FindByUser(ctx context.Context, user primitive.ObjectID) ([]models.CartEntry, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartEntry), args.Error(1)
}
func (m *MockCartRepository) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Insert(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}
func (m *MockProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductRepository) FindByNameAndVendor(ctx context.Context, name string, vendor primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, name, vendor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *MockProductRepository) FindByVendor(ctx context.Context, vendor primitive.ObjectID) ([]models.Product, error) {
	args := m.Called(ctx, vendor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *MockProductRepository) FindByCategory(ctx context.Context, category primitive.ObjectID) ([]models.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *MockProductRepository) FindFeatured(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *MockProductRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *MockProductRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Product, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductRepository) DecrementQuantity(ctx context.Context, id primitive.ObjectID, amount int, allowNegative bool) error {
	args := m.Called(ctx, id, amount, allowNegative)
	return args.Error(0)
}

// --- Mock Collaborators ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GenerateTransactionRef() string {
	args := m.Called()
	return args.String(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
