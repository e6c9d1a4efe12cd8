package xlsx

import (
	"testing"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func tableNamed(header string) domain.RawTable {
	return domain.RawTable{Columns: []domain.StationColumn{{Header: header}}}
}

func TestTableCache_GetPut(t *testing.T) {
	c := newTableCache(3)
	stamp := fileStamp{modTime: t0, size: 100}

	c.put("a.xlsx", stamp, tableNamed("Warszawa"))

	table, ok := c.get("a.xlsx", stamp)
	assert.True(t, ok)
	assert.Equal(t, "Warszawa", table.Columns[0].Header)

	_, ok = c.get("missing.xlsx", stamp)
	assert.False(t, ok)
}

func TestTableCache_StaleVersionMisses(t *testing.T) {
	c := newTableCache(3)
	c.put("a.xlsx", fileStamp{modTime: t0, size: 100}, tableNamed("Warszawa"))

	_, ok := c.get("a.xlsx", fileStamp{modTime: t0.Add(time.Second), size: 100})
	assert.False(t, ok, "modified file")
	_, ok = c.get("a.xlsx", fileStamp{modTime: t0, size: 101})
	assert.False(t, ok, "resized file")

	c.put("a.xlsx", fileStamp{modTime: t0.Add(time.Second), size: 120}, tableNamed("Kraków"))
	table, ok := c.get("a.xlsx", fileStamp{modTime: t0.Add(time.Second), size: 120})
	assert.True(t, ok)
	assert.Equal(t, "Kraków", table.Columns[0].Header)
	assert.Equal(t, 1, c.len(), "one version per path")
}

func TestTableCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newTableCache(2)
	stamp := fileStamp{modTime: t0, size: 1}

	c.put("a", stamp, tableNamed("A"))
	c.put("b", stamp, tableNamed("B"))
	c.get("a", stamp)
	c.put("c", stamp, tableNamed("C")) // evicts "b"

	_, ok := c.get("a", stamp)
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b", stamp)
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.get("c", stamp)
	assert.True(t, ok)
}
