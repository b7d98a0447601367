package cache

import (
	"fmt"
	"sync"

	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/dgraph-io/ristretto"
)

// PageCache keeps recently served transaction pages per user. Keys are
// tracked per user so a sync that changed the user's ledger can drop every
// page at once.
type PageCache struct {
	cache *ristretto.Cache

	keys struct {
		sync.RWMutex
		m map[int64]map[string]struct{}
	}
}

func New() (*PageCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	pc := &PageCache{cache: c}
	pc.keys.m = make(map[int64]map[string]struct{})
	return pc, nil
}

// Key derives a cache key from everything that shapes a page: sort mode,
// cursor, page size and the filter query string.
func Key(userID int64, sort ledger.SortMode, cursor string, pageSize int, filterKey string) string {
	return fmt.Sprintf("page:%d:%s:%s:%d:%s", userID, sort, cursor, pageSize, filterKey)
}

func (c *PageCache) Get(key string) (*ledger.Page, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	page, ok := v.(*ledger.Page)
	return page, ok
}

func (c *PageCache) Set(userID int64, key string, page *ledger.Page) {
	c.keys.Lock()
	if c.keys.m[userID] == nil {
		c.keys.m[userID] = make(map[string]struct{})
	}
	c.keys.m[userID][key] = struct{}{}
	c.keys.Unlock()
	c.cache.Set(key, page, 1)
}

func (c *PageCache) InvalidateUser(userID int64) {
	c.keys.Lock()
	for key := range c.keys.m[userID] {
		c.cache.Del(key)
	}
	delete(c.keys.m, userID)
	c.keys.Unlock()
}
