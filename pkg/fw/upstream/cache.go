package upstream

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/komsit37/fw/pkg/fw/types"
)

// Querier is the read-only query surface of Client.
type Querier interface {
	Search(ctx context.Context, keyword string) ([]types.SearchResult, error)
	History(ctx context.Context, code string, count int) ([]types.HistoryRecord, error)
}

// CachedClient decorates a Querier with a TTL+LRU cache. Estimates are never
// cached; they go straight to the wrapped client.
type CachedClient struct {
	next    Querier
	search  *cache[[]types.SearchResult]
	history *cache[[]types.HistoryRecord]
}

// NewCachedClient caches up to size entries per query kind for ttl.
func NewCachedClient(next Querier, ttl time.Duration, size int) *CachedClient {
	return &CachedClient{
		next:    next,
		search:  newCache[[]types.SearchResult](ttl, size),
		history: newCache[[]types.HistoryRecord](ttl, size),
	}
}

func (c *CachedClient) Search(ctx context.Context, keyword string) ([]types.SearchResult, error) {
	k := strings.ToLower(strings.TrimSpace(keyword))
	return c.search.get(k, func() ([]types.SearchResult, error) {
		return c.next.Search(ctx, keyword)
	})
}

func (c *CachedClient) History(ctx context.Context, code string, count int) ([]types.HistoryRecord, error) {
	k := code + "|" + strconv.Itoa(count)
	return c.history.get(k, func() ([]types.HistoryRecord, error) {
		return c.next.History(ctx, code, count)
	})
}

// cache is a small TTL cache evicting the least recently used key once full.
type cache[V any] struct {
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry[V]
	order []string // LRU order, oldest at index 0
}

type cacheEntry[V any] struct {
	at time.Time
	v  V
}

func newCache[V any](ttl time.Duration, size int) *cache[V] {
	if size <= 0 {
		size = 1
	}
	return &cache[V]{ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry[V])}
}

// get returns the cached value for k or loads it. Errors are not cached.
func (c *cache[V]) get(k string, load func() (V, error)) (V, error) {
	now := c.now()
	c.mu.Lock()
	if ent, ok := c.items[k]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(k)
			c.mu.Unlock()
			return ent.v, nil
		}
		// expired
		delete(c.items, k)
		c.removeFromOrderLocked(k)
	}
	c.mu.Unlock()

	v, err := load()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	if _, ok := c.items[k]; ok {
		c.removeFromOrderLocked(k)
	}
	c.items[k] = cacheEntry[V]{at: now, v: v}
	c.order = append(c.order, k)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	c.mu.Unlock()
	return v, nil
}

func (c *cache[V]) touchLocked(k string) {
	c.removeFromOrderLocked(k)
	c.order = append(c.order, k)
}

func (c *cache[V]) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
