package customer

import (
	"context"
	"testing"

	"credit-control/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Save(ctx context.Context, cust *Customer) error {
	args := m.Called(ctx, cust)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	var cust *Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, customerCode string) (*Customer, error) {
	args := m.Called(ctx, customerCode)
	var cust *Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, customerCode string) (bool, error) {
	args := m.Called(ctx, customerCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Search(ctx context.Context, query SearchQuery) ([]*Customer, int64, error) {
	args := m.Called(ctx, query)
	var customers []*Customer
	if args.Get(0) != nil {
		customers = args.Get(0).([]*Customer)
	}
	return customers, args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) DistinctIndustries(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var industries []string
	if args.Get(0) != nil {
		industries = args.Get(0).([]string)
	}
	return industries, args.Error(1)
}

func (m *MockCustomerRepository) MaxAssignedID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerCache struct {
	mock.Mock
}

func (m *MockCustomerCache) Get(key string) (*Customer, bool) {
	args := m.Called(key)
	var cust *Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*Customer)
	}
	return cust, args.Bool(1)
}

func (m *MockCustomerCache) Put(key string, cust *Customer) {
	m.Called(key, cust)
}

func (m *MockCustomerCache) Invalidate(keys ...string) {
	m.Called(keys)
}

func (m *MockCustomerCache) InvalidateAll() {
	m.Called()
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, evt event.CustomerCreatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishCustomerUpdated(ctx context.Context, evt event.CustomerUpdatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func TestSearchQueryOffset(t *testing.T) {
	assert.Equal(t, 0, SearchQuery{Page: 0, Size: 10}.Offset())
	assert.Equal(t, 30, SearchQuery{Page: 3, Size: 10}.Offset())
	assert.Equal(t, 10, SearchQuery{Page: 2, Size: 5}.Offset())
}
