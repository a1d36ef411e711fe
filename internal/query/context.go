// Package query binds a catalog table to the compiler's resolution
// interfaces. A Context is cheap to build and holds no state beyond
// the catalog and table it was created for; resolution is a fresh
// lookup on every call.
package query

import (
	"github.com/roach88/formulac/internal/catalog"
	"github.com/roach88/formulac/internal/compiler"
)

// Context resolves formula names against one table of a catalog.
type Context struct {
	catalog *catalog.Catalog
	table   string
}

// NewContext creates a resolution context for the given table.
func NewContext(c *catalog.Catalog, table string) *Context {
	return &Context{catalog: c, table: table}
}

// Table returns the table this context resolves against.
func (c *Context) Table() string {
	return c.table
}

// ResolveDimension implements compiler.QueryContext. Field names match
// exactly within the context's table.
func (c *Context) ResolveDimension(name string) (compiler.Dimension, bool) {
	f := c.catalog.FieldByName(c.table, name)
	if f == nil {
		return nil, false
	}
	return f, true
}

// ResolveMetric implements compiler.QueryContext. Table-scoped metrics
// shadow catalog-wide ones.
func (c *Context) ResolveMetric(name string) (compiler.Metric, bool) {
	m := c.catalog.MetricByName(c.table, name)
	if m == nil {
		return nil, false
	}
	return m, true
}
