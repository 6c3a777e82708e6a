package app

import (
	"log"
	"strings"
)

// Catalog is the list of preset names a viewer can step through, narrowed
// by a search query.
type Catalog struct {
	all      []string
	filtered []string
	index    int
	query    string
}

// NewCatalog creates a catalog over names.
//
// 参数：
//   - names: 全部预设名称（按显示顺序）
//   - query: 初始过滤关键字，没有匹配时退回到全部名称
//   - start: 初始选中的预设名称，为空或不存在时选中第一个
func NewCatalog(names []string, query, start string) *Catalog {
	c := &Catalog{all: append([]string(nil), names...)}
	c.filtered = filterNames(c.all, query)
	c.query = query
	if len(c.filtered) == 0 {
		log.Printf("[Catalog] Warning: no presets match filter %q, showing all", query)
		c.filtered = c.all
		c.query = ""
	}
	c.Select(start)
	return c
}

// filterNames returns names matching the query (case-insensitive substring match)
func filterNames(names []string, query string) []string {
	if query == "" {
		return names
	}
	queryLower := strings.ToLower(query)
	filtered := make([]string, 0)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), queryLower) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// Current returns the selected name, false when nothing matches the query.
func (c *Catalog) Current() (string, bool) {
	if len(c.filtered) == 0 {
		return "", false
	}
	return c.filtered[c.index], true
}

// Select moves to name if it is in the filtered list and reports whether it was.
func (c *Catalog) Select(name string) bool {
	for i, n := range c.filtered {
		if n == name {
			c.index = i
			return true
		}
	}
	return false
}

// Jump moves delta entries, wrapping around both ends.
func (c *Catalog) Jump(delta int) {
	n := len(c.filtered)
	if n == 0 {
		return
	}
	c.index = ((c.index+delta)%n + n) % n
}

// Next moves to the next entry.
func (c *Catalog) Next() { c.Jump(1) }

// Prev moves to the previous entry.
func (c *Catalog) Prev() { c.Jump(-1) }

// First moves to the first entry.
func (c *Catalog) First() { c.index = 0 }

// Last moves to the last entry.
func (c *Catalog) Last() {
	if len(c.filtered) > 0 {
		c.index = len(c.filtered) - 1
	}
}

// SetQuery filters the list and resets the selection to the first match.
func (c *Catalog) SetQuery(query string) {
	c.query = query
	c.filtered = filterNames(c.all, query)
	c.index = 0
	log.Printf("[Catalog] Search query: %q, Results: %d", query, len(c.filtered))
}

// Query returns the current search query.
func (c *Catalog) Query() string { return c.query }

// Index returns the position of the selection in the filtered list.
func (c *Catalog) Index() int { return c.index }

// Len returns the number of entries matching the query.
func (c *Catalog) Len() int { return len(c.filtered) }

// Total returns the number of entries regardless of the query.
func (c *Catalog) Total() int { return len(c.all) }
