package sqlbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dynoquery/dynoquery/pkg/models"
)

var (
	// ErrNoInsertableColumns means an insert or generation request has no eligible column
	ErrNoInsertableColumns = errors.New("no insertable columns")

	// ErrPrimaryKeyMissing means the table has no discoverable single-column primary key
	ErrPrimaryKeyMissing = errors.New("primary key column not found")
)

// SelectRowLimit caps ad-hoc exploratory queries to bound memory use
const SelectRowLimit = 1000

// BuildInsert assembles a parameterized single-row INSERT. Only columns
// present in values are included, in physical column order.
func BuildInsert(table string, cols models.ColumnTypeMap, values map[string]interface{}) (string, []interface{}, error) {
	var names []string
	var placeholders []string
	var args []interface{}

	for _, col := range cols {
		v, ok := values[col.Name]
		if !ok {
			continue
		}
		args = append(args, v)
		names = append(names, QuoteIdent(col.Name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	if len(names) == 0 {
		return "", nil, ErrNoInsertableColumns
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return stmt, args, nil
}

// BuildUpdate assembles a parameterized single-column UPDATE keyed by primary key
func BuildUpdate(table, column, pkColumn, rowID string, value interface{}) (string, []interface{}, error) {
	if pkColumn == "" {
		return "", nil, ErrPrimaryKeyMissing
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2",
		QuoteIdent(table), QuoteIdent(column), QuoteIdent(pkColumn))
	return stmt, []interface{}{value, rowID}, nil
}

// BuildDelete assembles a parameterized DELETE keyed by primary key
func BuildDelete(table, pkColumn, rowID string) (string, []interface{}, error) {
	if pkColumn == "" {
		return "", nil, ErrPrimaryKeyMissing
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", QuoteIdent(table), QuoteIdent(pkColumn))
	return stmt, []interface{}{rowID}, nil
}

// BuildRawSelect assembles the ad-hoc search SELECT from prebuilt FROM and
// WHERE fragments, capped at SelectRowLimit rows.
func BuildRawSelect(fromClause, whereClause string) string {
	where := strings.TrimSpace(whereClause)
	if where == "" {
		where = TruePredicate
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT %d", fromClause, where, SelectRowLimit)
}
