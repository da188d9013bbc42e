package lang

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/dengtao07/expression/lang/ast"
)

// Cache memoizes parsed syntax trees by grammar and expression text.
//
// Trees are never modified after parsing, so one tree may be evaluated by
// many goroutines at once. A Cache is safe for concurrent use and may be
// shared by several resolvers.
type Cache struct {
	entries sync.Map // uint64 -> *cacheEntry
	hits    atomic.Int64
	misses  atomic.Int64
}

// cacheEntry parses its text exactly once, however many goroutines ask.
type cacheEntry struct {
	once    sync.Once
	grammar string
	text    string
	node    ast.Node
	err     error
}

// NewCache returns an empty Cache.
func NewCache() *Cache { return &Cache{} }

// Len returns the number of cached texts.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

// Stats returns the number of lookups served from and added to the cache.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.entries.Clear()
	c.hits.Store(0)
	c.misses.Store(0)
}

// grammarKey identifies the trees g produces. A grammar whose output depends
// on its configuration implements CacheKey.
func grammarKey(g Grammar) string {
	if k, ok := g.(interface{ CacheKey() string }); ok {
		return k.CacheKey()
	}

	return reflect.TypeOf(g).String()
}

func (c *Cache) parse(g Grammar, text string) (ast.Node, error) {
	name := grammarKey(g)
	key := xxh3.HashString(name + "\x00" + text)

	value, loaded := c.entries.LoadOrStore(key, &cacheEntry{grammar: name, text: text})

	e, ok := value.(*cacheEntry)
	if !ok || e.grammar != name || e.text != text {
		// Hash collision: parse without caching.
		c.misses.Add(1)

		return g.Parse(text)
	}

	if loaded {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	e.once.Do(func() { e.node, e.err = g.Parse(text) })

	return e.node, e.err
}
