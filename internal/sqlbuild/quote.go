// Package sqlbuild assembles dynamic SQL from validated identifiers and
// user-supplied filter input. Identifier quoting and value-literal quoting
// are deliberately separate functions and must never be interchanged.
package sqlbuild

import "strings"

// QuoteIdent quotes a table or column name, doubling embedded double quotes
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string value literal, doubling embedded single quotes
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ColumnRef returns a fully qualified, quoted table.column reference
func ColumnRef(table, column string) string {
	return QuoteIdent(table) + "." + QuoteIdent(column)
}
