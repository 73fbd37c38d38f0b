// Package generator produces constraint-aware synthetic rows. Value
// fabrication is pushed into the database as one bulk INSERT ... SELECT
// over generate_series, so foreign key columns draw from rows that exist
// at evaluation time and a failed batch rolls back as a whole.
package generator

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dynoquery/dynoquery/internal/catalog"
	"github.com/dynoquery/dynoquery/internal/session"
	"github.com/dynoquery/dynoquery/internal/sqlbuild"
	"github.com/dynoquery/dynoquery/pkg/models"
)

// Generator builds and executes bulk synthetic-data inserts
type Generator struct {
	Session *session.Session
	Catalog *catalog.Catalog
	Logger  *logrus.Logger
}

// New creates a generator over the given session and catalog
func New(sess *session.Session, cat *catalog.Catalog, logger *logrus.Logger) *Generator {
	return &Generator{Session: sess, Catalog: cat, Logger: logger}
}

// TableResult is the outcome of generating rows for one table
type TableResult struct {
	Table    string
	Inserted int64
	Err      error
}

// Generate inserts count synthetic rows into the table inside one
// transaction. Only NOT-NULL columns without a database-side default are
// populated; serial primary keys and defaulted columns are always left to
// the database. Any failure rolls back the whole batch.
func (g *Generator) Generate(table string, count int) (int64, error) {
	cols, err := g.Catalog.Columns(table)
	if err != nil {
		return 0, err
	}
	fks, err := g.Catalog.ForeignKeysOf(table)
	if err != nil {
		return 0, err
	}
	required, err := g.Catalog.NotNullNoDefaultColumns(table)
	if err != nil {
		return 0, err
	}

	var names []string
	var exprs []string
	for _, col := range cols {
		if !required[col.Name] {
			continue
		}
		names = append(names, sqlbuild.QuoteIdent(col.Name))
		exprs = append(exprs, columnExpression(col, fks))
	}

	if len(names) == 0 {
		return 0, fmt.Errorf("table %s: %w", table, sqlbuild.ErrNoInsertableColumns)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM generate_series(1, $1)",
		sqlbuild.QuoteIdent(table), strings.Join(names, ", "), strings.Join(exprs, ", "))

	var inserted int64
	err = g.Session.WithTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(stmt, count)
		if err != nil {
			return err
		}
		inserted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}

	g.Logger.Infof("Inserted %d rows into %s", inserted, table)
	return inserted, nil
}

// GenerateAll generates count rows for every table, parents before
// children, one transaction per table. Tables whose columns are all
// serial or defaulted are skipped.
func (g *Generator) GenerateAll(count int) ([]TableResult, error) {
	ordered, err := g.Catalog.DependencyOrder()
	if err != nil {
		return nil, err
	}

	results := make([]TableResult, 0, len(ordered))
	for _, table := range ordered {
		inserted, err := g.Generate(table, count)
		if errors.Is(err, sqlbuild.ErrNoInsertableColumns) {
			g.Logger.Warningf("Skipping %s: all columns are serial or defaulted", table)
			continue
		}
		if err != nil {
			g.Logger.Errorf("Failed to populate %s: %v", table, err)
		}
		results = append(results, TableResult{Table: table, Inserted: inserted, Err: err})
	}
	return results, nil
}

// columnExpression picks one per-row generation expression for a column.
// First match wins: foreign key lookup, email token, then type category.
func columnExpression(col models.Column, fks map[string]models.ForeignKeyRef) string {
	if ref, ok := fks[col.Name]; ok {
		return fmt.Sprintf("(SELECT %s FROM %s ORDER BY random() LIMIT 1)",
			sqlbuild.QuoteIdent(ref.ParentColumn), sqlbuild.QuoteIdent(ref.ParentTable))
	}
	if strings.Contains(strings.ToLower(col.Name), "email") {
		return "substring(md5(random()::text), 1, 7) || '@gmail.com'"
	}

	switch col.Category {
	case models.Integer:
		return "floor(random()*10000)::int"
	case models.Decimal:
		return "round((random()*10000)::numeric, 2)"
	case models.Boolean:
		return "(random() > 0.5)"
	case models.Temporal:
		if strings.Contains(strings.ToLower(col.NativeType), "timestamp") {
			return "timestamp '2020-01-01' + random() * (timestamp '2025-12-31' - timestamp '2020-01-01')"
		}
		return "date '2020-01-01' + (random()*2000)::int"
	default:
		return "substring(md5(random()::text), 1, 10)"
	}
}
