package main

// pageCacheEntry remembers which measures a page showed when it was last
// drawn.
type pageCacheEntry struct {
	StartMeasure int
	EndMeasure   int
	Dirty        bool
}

// PageCache tracks which pages need to be redrawn after a layout pass.
type PageCache struct {
	entries []pageCacheEntry
}

func newPageCache() *PageCache {
	return &PageCache{}
}

// Update records the measure range a page holds after a layout pass. A new
// page, or a page whose range moved, is invalidated. It reports whether the
// entry was invalidated by this call.
func (c *PageCache) Update(page, start, end int) bool {
	if page < 0 {
		return false
	}
	for len(c.entries) <= page {
		c.entries = append(c.entries, pageCacheEntry{StartMeasure: -1, EndMeasure: -1, Dirty: true})
	}
	e := &c.entries[page]
	if e.StartMeasure == start && e.EndMeasure == end {
		return false
	}
	e.StartMeasure = start
	e.EndMeasure = end
	e.Dirty = true
	return true
}

func (c *PageCache) Invalidate(page int) {
	if page >= 0 && page < len(c.entries) {
		c.entries[page].Dirty = true
	}
}

func (c *PageCache) InvalidateAll() {
	for i := range c.entries {
		c.entries[i].Dirty = true
	}
}

// NeedsRedraw is true for pages the cache knows nothing about.
func (c *PageCache) NeedsRedraw(page int) bool {
	if page < 0 || page >= len(c.entries) {
		return true
	}
	return c.entries[page].Dirty
}

func (c *PageCache) MarkRendered(page int) {
	if page >= 0 && page < len(c.entries) {
		c.entries[page].Dirty = false
	}
}

// Truncate drops entries for pages that no longer exist.
func (c *PageCache) Truncate(pages int) {
	if pages < len(c.entries) {
		c.entries = c.entries[:max(pages, 0)]
	}
}

func (c *PageCache) Len() int { return len(c.entries) }

func (c *PageCache) Range(page int) (start, end int, ok bool) {
	if page < 0 || page >= len(c.entries) {
		return -1, -1, false
	}
	e := c.entries[page]
	return e.StartMeasure, e.EndMeasure, true
}
