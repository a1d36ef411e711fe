// Package catalog holds the metadata formulas compile against: tables,
// their fields, and saved metrics. A catalog can be declared in CUE or
// YAML, persisted to SQLite, and queried per table when building a
// query context.
package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/formulac/internal/mbql"
)

// Base types a field can carry.
const (
	TypeNumber   = "number"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
)

// ValidBaseType reports whether t names a supported base type.
func ValidBaseType(t string) bool {
	switch t {
	case TypeNumber, TypeString, TypeBoolean, TypeDatetime:
		return true
	}
	return false
}

// Field is one column of a table.
type Field struct {
	// ID is the numeric id referenced from compiled clauses.
	ID int64

	// EntityID is a stable UUIDv7 assigned when the field enters the
	// catalog. It survives renames; ID is positional per catalog.
	EntityID string

	// Table is the owning table's name.
	Table string

	// Name is the field name as written in formulas.
	Name string

	// BaseType is one of the Type* constants.
	BaseType string
}

// MBQL returns the canonical clause form of a reference to this field.
func (f *Field) MBQL() mbql.Expr {
	return mbql.NewClause("field", mbql.Number(f.ID))
}

// Metric is a saved aggregation formula.
type Metric struct {
	// ID is the numeric id referenced from compiled clauses.
	ID int64

	// EntityID is a stable UUIDv7 assigned when the metric enters the
	// catalog.
	EntityID string

	// Table is the owning table's name, or "" for a catalog-wide
	// metric visible from every table.
	Table string

	// Name is the metric name as written after '#' in formulas.
	Name string

	// Definition is the metric's own formula source, kept for
	// display and round-tripping. It is not compiled here.
	Definition string
}

// MetricID returns the numeric id referenced from compiled clauses.
func (m *Metric) MetricID() int64 {
	return m.ID
}

// Catalog is an in-memory collection of fields and metrics. Lookups
// are exact-match on name and scoped by table.
type Catalog struct {
	fields  []*Field
	metrics []*Metric

	nextFieldID  int64
	nextMetricID int64
}

// New returns an empty catalog. Ids are assigned sequentially from 1
// as fields and metrics are added.
func New() *Catalog {
	return &Catalog{nextFieldID: 1, nextMetricID: 1}
}

// AddField registers a field and assigns its ids. Duplicate
// (table, name) pairs are rejected.
func (c *Catalog) AddField(table, name, baseType string) (*Field, error) {
	if !ValidBaseType(baseType) {
		return nil, fmt.Errorf("field %s.%s: invalid base type %q", table, name, baseType)
	}
	if f := c.FieldByName(table, name); f != nil {
		return nil, fmt.Errorf("field %s.%s already defined", table, name)
	}

	f := &Field{
		ID:       c.nextFieldID,
		EntityID: newEntityID(),
		Table:    table,
		Name:     name,
		BaseType: baseType,
	}
	c.nextFieldID++
	c.fields = append(c.fields, f)
	return f, nil
}

// AddMetric registers a metric and assigns its ids. An empty table
// makes the metric visible from every table. Duplicate (table, name)
// pairs are rejected.
func (c *Catalog) AddMetric(table, name, definition string) (*Metric, error) {
	for _, m := range c.metrics {
		if m.Table == table && m.Name == name {
			return nil, fmt.Errorf("metric %q already defined for table %q", name, table)
		}
	}

	m := &Metric{
		ID:         c.nextMetricID,
		EntityID:   newEntityID(),
		Table:      table,
		Name:       name,
		Definition: definition,
	}
	c.nextMetricID++
	c.metrics = append(c.metrics, m)
	return m, nil
}

// FieldByName finds a field by exact name within a table. Returns nil
// when no field matches.
func (c *Catalog) FieldByName(table, name string) *Field {
	for _, f := range c.fields {
		if f.Table == table && f.Name == name {
			return f
		}
	}
	return nil
}

// MetricByName finds a metric by exact name. Table-scoped metrics
// shadow catalog-wide ones; a metric with an empty table matches from
// any table. Returns nil when no metric matches.
func (c *Catalog) MetricByName(table, name string) *Metric {
	var global *Metric
	for _, m := range c.metrics {
		if m.Name != name {
			continue
		}
		if m.Table == table {
			return m
		}
		if m.Table == "" {
			global = m
		}
	}
	return global
}

// Fields returns all fields in insertion order.
func (c *Catalog) Fields() []*Field {
	return c.fields
}

// Metrics returns all metrics in insertion order.
func (c *Catalog) Metrics() []*Metric {
	return c.metrics
}

// Tables returns the distinct table names in first-seen order.
func (c *Catalog) Tables() []string {
	seen := make(map[string]bool)
	var tables []string
	for _, f := range c.fields {
		if !seen[f.Table] {
			seen[f.Table] = true
			tables = append(tables, f.Table)
		}
	}
	return tables
}

// restoreField re-adds a field with ids already assigned, keeping the
// id counter ahead of everything restored. Used when loading from the
// store.
func (c *Catalog) restoreField(f *Field) {
	c.fields = append(c.fields, f)
	if f.ID >= c.nextFieldID {
		c.nextFieldID = f.ID + 1
	}
}

// restoreMetric re-adds a metric with ids already assigned.
func (c *Catalog) restoreMetric(m *Metric) {
	c.metrics = append(c.metrics, m)
	if m.ID >= c.nextMetricID {
		c.nextMetricID = m.ID + 1
	}
}

// newEntityID generates a stable identity for a catalog entry.
// Uses github.com/google/uuid; V7 keeps ids time-ordered.
func newEntityID() string {
	return uuid.Must(uuid.NewV7()).String()
}
