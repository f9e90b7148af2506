package cone

import (
	"container/list"
	"strconv"
	"strings"

	"oraclerepair/internal/host"
)

// DiagnosticCache maps a cone signature to the "before" diagnostics
// observed for that cone, LRU-bounded by entry count.
type DiagnosticCache struct {
	maxEntries int
	ll         *list.List // front = most recently used
	index      map[string]*list.Element
}

type cacheEntry struct {
	signature string
	diags     []host.Diagnostic
}

// NewDiagnosticCache returns a cache holding at most maxEntries entries.
func NewDiagnosticCache(maxEntries int) *DiagnosticCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &DiagnosticCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		index:      make(map[string]*list.Element),
	}
}

// Get returns the cached diagnostics for signature, if present,
// promoting it to most-recently-used.
func (c *DiagnosticCache) Get(signature string) ([]host.Diagnostic, bool) {
	el, ok := c.index[signature]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).diags, true
}

// Put stores diags under signature, evicting the least-recently-used
// entry if the cache is full.
func (c *DiagnosticCache) Put(signature string, diags []host.Diagnostic) {
	if el, ok := c.index[signature]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).diags = diags
		return
	}
	el := c.ll.PushFront(&cacheEntry{signature: signature, diags: diags})
	c.index[signature] = el
	for c.ll.Len() > c.maxEntries {
		back := c.ll.Back()
		if back == nil {
			break
		}
		c.ll.Remove(back)
		delete(c.index, back.Value.(*cacheEntry).signature)
	}
}

// ClearIteration removes every entry whose signature carries the given
// iteration prefix ("ITER<n>:").
func (c *DiagnosticCache) ClearIteration(iteration int) {
	prefix := "ITER" + strconv.Itoa(iteration) + ":"
	var toRemove []*list.Element
	for el := c.ll.Front(); el != nil; el = el.Next() {
		if strings.HasPrefix(el.Value.(*cacheEntry).signature, prefix) {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.ll.Remove(el)
		delete(c.index, el.Value.(*cacheEntry).signature)
	}
}
