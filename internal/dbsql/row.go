package dbsql

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// Row is one result row: column name to value, preserving the column order
// of the remote result set. No schema is enforced; the shape is whatever the
// remote table returns.
type Row struct {
	cols *orderedmap.OrderedMap[string, interface{}]
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{cols: orderedmap.NewOrderedMap[string, interface{}]()}
}

// Set stores a column value.
func (r *Row) Set(column string, value interface{}) {
	r.cols.Set(column, value)
}

// Get returns the value for a column and whether it was present.
func (r *Row) Get(column string) (interface{}, bool) {
	return r.cols.Get(column)
}

// String returns the column value formatted as a string, and whether the
// column was present. Driver []byte values come back as plain strings.
func (r *Row) String(column string) (string, bool) {
	v, ok := r.cols.Get(column)
	if !ok {
		return "", false
	}
	if v == nil {
		return "", true
	}
	return fmt.Sprintf("%v", v), true
}

// Columns returns the column names in result-set order.
func (r *Row) Columns() []string {
	return r.cols.Keys()
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return r.cols.Len()
}

// Result is the outcome of one executed statement: either a fetched result
// set (read statements) or an affected row count (write statements).
type Result struct {
	Columns  []string
	Rows     []*Row
	Affected int64
}

// normalizeValue converts driver-specific scan values into plain Go values.
// Text columns commonly arrive as []byte from database/sql drivers.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
