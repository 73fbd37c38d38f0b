package models

import (
	"regexp"
	"strconv"
)

// TypeCategory is the closed classification used for all coercion,
// predicate and generation dispatch. Native type names are normalized
// to a category exactly once, at the catalog boundary.
type TypeCategory int

const (
	Unknown TypeCategory = iota
	Integer
	Decimal
	Boolean
	Text
	Temporal
)

// String returns a human-readable name for the type category
func (c TypeCategory) String() string {
	switch c {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case Text:
		return "text"
	case Temporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// Column represents a database column with its native type and normalized category
type Column struct {
	Name       string
	NativeType string
	Category   TypeCategory
}

// ColumnTypeMap is the ordered column set of one table, in physical column order
type ColumnTypeMap []Column

// Get returns the column with the given name
func (m ColumnTypeMap) Get(name string) (Column, bool) {
	for _, col := range m {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Names returns the column names in physical order
func (m ColumnTypeMap) Names() []string {
	names := make([]string, len(m))
	for i, col := range m {
		names[i] = col.Name
	}
	return names
}

// ForeignKeyRef is the parent side of a foreign key, keyed by child column
type ForeignKeyRef struct {
	ParentTable  string
	ParentColumn string
}

// ForeignKeyEdge represents a foreign key relationship between two tables
type ForeignKeyEdge struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// ReportTemplate is a fixed, parameterized report query shipped with the system
type ReportTemplate struct {
	Title string
	SQL   string
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// ParamCount returns the number of positional parameters the template
// expects, derived from the highest $n placeholder in its text.
func (t ReportTemplate) ParamCount() int {
	max := 0
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.SQL, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

// ResultSet holds the rows and column names returned by a query
type ResultSet struct {
	Columns []string
	Rows    [][]interface{}
}
