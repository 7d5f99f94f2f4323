package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"credit-control/internal/domain/customer"
	"credit-control/internal/infrastructure/monitoring"
)

const defaultCleanupInterval = 30 * time.Second

// CustomerCache is an in-memory, TTL-bounded lookup cache for customer
// records. Entries are stored per key ("<id>" or "code:<CODE>"); the service
// owns keeping the two keyspaces coherent. Last writer wins on a key.
type CustomerCache struct {
	entries sync.Map // map[string]*cacheEntry
	ttl     time.Duration
	size    int64
	logger  *slog.Logger
	stopCh  chan struct{}
	stopped int32
}

var _ customer.CustomerCache = (*CustomerCache)(nil)

type cacheEntry struct {
	value     *customer.Customer
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

func NewCustomerCache(ttl time.Duration, logger *slog.Logger) *CustomerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &CustomerCache{
		ttl:    ttl,
		logger: logger.With(slog.String("component", "CustomerCache")),
		stopCh: make(chan struct{}),
	}

	go c.cleanupExpired()

	return c
}

// Get returns a copy of the cached record, or a miss when absent or expired.
func (c *CustomerCache) Get(key string) (*customer.Customer, bool) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			monitoring.Cache.HitsTotal.Inc()
			return entry.value.Clone(), true
		}
		if _, loaded := c.entries.LoadAndDelete(key); loaded {
			c.addSize(-1)
		}
	}

	monitoring.Cache.MissesTotal.Inc()
	return nil, false
}

// Put stores an independent copy so later mutation of the original cannot
// leak into cached reads.
func (c *CustomerCache) Put(key string, cust *customer.Customer) {
	if cust == nil {
		return
	}
	entry := &cacheEntry{
		value:     cust.Clone(),
		expiresAt: time.Now().Add(c.ttl),
	}
	if _, loaded := c.entries.Swap(key, entry); !loaded {
		c.addSize(1)
	}
}

func (c *CustomerCache) Invalidate(keys ...string) {
	for _, key := range keys {
		if _, loaded := c.entries.LoadAndDelete(key); loaded {
			c.addSize(-1)
		}
	}
}

func (c *CustomerCache) InvalidateAll() {
	c.entries.Clear()
	atomic.StoreInt64(&c.size, 0)
	monitoring.Cache.Entries.Set(0)
	c.logger.Debug("Customer cache flushed")
}

// Len reports the number of entries, counting not-yet-collected expired ones.
func (c *CustomerCache) Len() int {
	return int(atomic.LoadInt64(&c.size))
}

// Stop terminates the background cleanup goroutine.
func (c *CustomerCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

func (c *CustomerCache) addSize(delta int64) {
	monitoring.Cache.Entries.Set(float64(atomic.AddInt64(&c.size, delta)))
}

func (c *CustomerCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			removed := 0
			c.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired() {
					if _, loaded := c.entries.LoadAndDelete(key); loaded {
						c.addSize(-1)
						removed++
					}
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("Evicted expired cache entries", slog.Int("count", removed))
			}
		}
	}
}
