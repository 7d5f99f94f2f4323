package cache

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"credit-control/internal/domain/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *CustomerCache {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCustomerCache(ttl, logger)
	t.Cleanup(c.Stop)
	return c
}

func cachedCustomer(id int64, code string) *customer.Customer {
	cust := customer.NewCustomer(code, "Borealis Trading")
	cust.CustomerID = id
	return cust
}

func TestCachePutAndGet(t *testing.T) {
	c := newTestCache(t, time.Minute)
	cust := cachedCustomer(1, "BORE01")

	c.Put(customer.IDKey(1), cust)

	got, ok := c.Get(customer.IDKey(1))
	require.True(t, ok)
	assert.Equal(t, cust.CustomerCode, got.CustomerCode)
	assert.Equal(t, 1, c.Len())
}

func TestCacheGetMiss(t *testing.T) {
	c := newTestCache(t, time.Minute)

	got, ok := c.Get(customer.IDKey(42))

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCacheReturnsCopies(t *testing.T) {
	c := newTestCache(t, time.Minute)
	cust := cachedCustomer(1, "BORE01")
	c.Put(customer.IDKey(1), cust)

	first, ok := c.Get(customer.IDKey(1))
	require.True(t, ok)
	first.CompanyName = "mutated"

	second, ok := c.Get(customer.IDKey(1))
	require.True(t, ok)
	assert.Equal(t, "Borealis Trading", second.CompanyName)
}

func TestCacheExpiry(t *testing.T) {
	c := newTestCache(t, 10*time.Millisecond)
	c.Put(customer.IDKey(1), cachedCustomer(1, "BORE01"))

	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get(customer.IDKey(1))
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	c := newTestCache(t, time.Minute)
	c.Put(customer.IDKey(1), cachedCustomer(1, "BORE01"))
	c.Put(customer.CodeKey("BORE01"), cachedCustomer(1, "BORE01"))
	c.Put(customer.IDKey(2), cachedCustomer(2, "AUST02"))

	c.Invalidate(customer.IDKey(1), customer.CodeKey("BORE01"))

	_, ok := c.Get(customer.IDKey(1))
	assert.False(t, ok)
	_, ok = c.Get(customer.CodeKey("BORE01"))
	assert.False(t, ok)
	_, ok = c.Get(customer.IDKey(2))
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCacheInvalidateAll(t *testing.T) {
	c := newTestCache(t, time.Minute)
	c.Put(customer.IDKey(1), cachedCustomer(1, "BORE01"))
	c.Put(customer.IDKey(2), cachedCustomer(2, "AUST02"))

	c.InvalidateAll()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(customer.IDKey(1))
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			key := customer.IDKey(id)
			c.Put(key, cachedCustomer(id, "CODE01"))
			c.Get(key)
			if id%2 == 0 {
				c.Invalidate(key)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 25, c.Len())
}
