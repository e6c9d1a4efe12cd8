package xlsx

import (
	"os"
	"sync"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
)

// fileStamp identifies one version of a workbook on disk.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

// tableCache keeps parsed tables for the most recently read workbooks, one
// version per path. Cached tables are shared; analysis never mutates its input.
type tableCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	path  string
	stamp fileStamp
	table domain.RawTable
	prev  *cacheEntry
	next  *cacheEntry
}

func newTableCache(maxEntries int) *tableCache {
	return &tableCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

// get returns the table for path if it was cached for the same file version.
func (c *tableCache) get(path string, stamp fileStamp) (domain.RawTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || !e.stamp.modTime.Equal(stamp.modTime) || e.stamp.size != stamp.size {
		return domain.RawTable{}, false
	}
	c.moveToFront(e)
	return e.table, true
}

// put stores the table for path, replacing any older version.
func (c *tableCache) put(path string, stamp fileStamp, table domain.RawTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		e.stamp, e.table = stamp, table
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{path: path, stamp: stamp, table: table}
	c.entries[path] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *tableCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *tableCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *tableCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *tableCache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *tableCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.path)
	c.unlink(c.tail)
}
