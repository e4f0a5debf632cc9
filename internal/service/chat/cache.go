package chat

import (
	"container/list"
	"sync"

	"github.com/solacechat/backend/internal/model/memory"
)

// sessionCache is a bounded LRU of live sessions keyed by session id. It is
// purely a performance layer: the file store stays authoritative, so an
// evicted session is simply reloaded from disk on the next turn.
type sessionCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	sessionID string
	session   *memory.ChatSession
}

func newSessionCache(capacity int) *sessionCache {
	if capacity < 1 {
		capacity = 1
	}
	return &sessionCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached session and marks it most recently used.
func (c *sessionCache) Get(sessionID string) (*memory.ChatSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[sessionID]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).session, true
}

// Put inserts or refreshes a session, evicting the least recently used
// entry when the cache is full.
func (c *sessionCache) Put(sessionID string, session *memory.ChatSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[sessionID]; ok {
		elem.Value.(*cacheEntry).session = session
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).sessionID)
		}
	}

	c.entries[sessionID] = c.order.PushFront(&cacheEntry{sessionID: sessionID, session: session})
}

// Len reports the number of cached sessions.
func (c *sessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
