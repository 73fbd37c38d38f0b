// Package store executes the dynamic write and search operations.
// Every mutating operation runs inside one transaction: success commits,
// any error rolls back before propagating, never a partial commit.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dynoquery/dynoquery/internal/catalog"
	"github.com/dynoquery/dynoquery/internal/coerce"
	"github.com/dynoquery/dynoquery/internal/session"
	"github.com/dynoquery/dynoquery/internal/sqlbuild"
	"github.com/dynoquery/dynoquery/pkg/models"
)

// Store runs insert, update, delete and ad-hoc search against live tables
type Store struct {
	Session *session.Session
	Catalog *catalog.Catalog
	Logger  *logrus.Logger
}

// New creates a store over the given session and catalog
func New(sess *session.Session, cat *catalog.Catalog, logger *logrus.Logger) *Store {
	return &Store{Session: sess, Catalog: cat, Logger: logger}
}

// Insert adds one row built from raw string values keyed by column name.
// Values are coerced per column type; columns absent from raw are left to
// database defaults.
func (s *Store) Insert(table string, raw map[string]string) error {
	cols, err := s.Catalog.Columns(table)
	if err != nil {
		return err
	}

	values := make(map[string]interface{})
	for _, col := range cols {
		rawValue, ok := raw[col.Name]
		if !ok {
			continue
		}
		v, err := coerce.Cast(rawValue, col.Category)
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name, err)
		}
		values[col.Name] = v
	}

	stmt, args, err := sqlbuild.BuildInsert(table, cols, values)
	if err != nil {
		return err
	}

	return s.Session.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(stmt, args...)
		return err
	})
}

// Update sets one column of the row identified by primary key value.
// The affected row count distinguishes "no rows updated" from an error.
func (s *Store) Update(table, column, rowID, raw string) (int64, error) {
	cols, err := s.Catalog.Columns(table)
	if err != nil {
		return 0, err
	}
	col, ok := cols.Get(column)
	if !ok {
		return 0, fmt.Errorf("column %q on table %s: %w", column, table, catalog.ErrColumnNotFound)
	}

	value, err := coerce.Cast(raw, col.Category)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}

	pk, err := s.Catalog.PrimaryKeyColumn(table)
	if err != nil {
		return 0, err
	}
	stmt, args, err := sqlbuild.BuildUpdate(table, column, pk, rowID, value)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = s.Session.WithTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(stmt, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

// ChildWarnings returns the tables referencing the given table, so the
// caller can warn before a delete that may cascade or fail.
func (s *Store) ChildWarnings(table string) ([]string, error) {
	return s.Catalog.ChildTables(table)
}

// Delete removes the row identified by primary key value
func (s *Store) Delete(table, rowID string) (int64, error) {
	pk, err := s.Catalog.PrimaryKeyColumn(table)
	if err != nil {
		return 0, err
	}
	stmt, args, err := sqlbuild.BuildDelete(table, pk, rowID)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = s.Session.WithTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(stmt, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

// SearchRequest describes an ad-hoc filtered search over one table, or
// two tables joined on a discovered foreign key edge.
type SearchRequest struct {
	Table      string
	JoinTable  string
	Predicates []string
}

// Search runs the ad-hoc SELECT. The joined return value is false when a
// requested two-table search fell back to a cross join.
func (s *Store) Search(req SearchRequest) (models.ResultSet, bool, error) {
	fromClause := sqlbuild.QuoteIdent(req.Table)
	joined := true

	if req.JoinTable != "" {
		var err error
		fromClause, joined, err = sqlbuild.ResolveJoin(s.Catalog, req.Table, req.JoinTable)
		if err != nil {
			return models.ResultSet{}, false, err
		}
		if !joined {
			s.Logger.Warningf("No foreign key relation between %s and %s, using CROSS JOIN", req.Table, req.JoinTable)
		}
	}

	query := sqlbuild.BuildRawSelect(fromClause, strings.Join(req.Predicates, " AND "))
	cols, rows, err := s.Session.Query(query)
	if err != nil {
		return models.ResultSet{}, joined, err
	}
	return models.ResultSet{Columns: cols, Rows: rows}, joined, nil
}
