// Package catalog reads the live schema from PostgreSQL's metadata views.
// Nothing is cached: every call reflects current database state. Native
// type names are normalized to the closed TypeCategory set here, once;
// downstream components never inspect raw type strings.
package catalog

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yourbasic/graph"

	"github.com/dynoquery/dynoquery/internal/session"
	"github.com/dynoquery/dynoquery/pkg/models"
)

var (
	// ErrTableNotFound means the referenced table does not exist in the current schema
	ErrTableNotFound = errors.New("table not found")

	// ErrColumnNotFound means the referenced column does not exist on the table
	ErrColumnNotFound = errors.New("column not found")
)

// Catalog provides read-only access to schema metadata
type Catalog struct {
	Session *session.Session
	Logger  *logrus.Logger
}

// New creates a catalog over the given session
func New(sess *session.Session, logger *logrus.Logger) *Catalog {
	return &Catalog{Session: sess, Logger: logger}
}

const tableExistsQuery = `
	SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	)`

// TableExists reports whether a table exists in the public schema
func (c *Catalog) TableExists(name string) (bool, error) {
	_, rows, err := c.Session.Query(tableExistsQuery, name)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	exists, _ := rows[0][0].(bool)
	return exists, nil
}

const listTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public'
	AND table_type = 'BASE TABLE'
	ORDER BY table_name`

// ListTables returns all base table names in lexicographic order
func (c *Catalog) ListTables() ([]string, error) {
	_, rows, err := c.Session.Query(listTablesQuery)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, row := range rows {
		tables = append(tables, row[0].(string))
	}
	return tables, nil
}

const columnsQuery = `
	SELECT column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = 'public' AND table_name = $1
	ORDER BY ordinal_position`

// Columns returns the table's columns in physical order, with native
// types already normalized to type categories.
func (c *Catalog) Columns(table string) (models.ColumnTypeMap, error) {
	_, rows, err := c.Session.Query(columnsQuery, table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		exists, err := c.TableExists(table)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrTableNotFound
		}
		return models.ColumnTypeMap{}, nil
	}

	cols := make(models.ColumnTypeMap, 0, len(rows))
	for _, row := range rows {
		name := row[0].(string)
		nativeType := row[1].(string)
		cols = append(cols, models.Column{
			Name:       name,
			NativeType: nativeType,
			Category:   CategoryOf(nativeType),
		})
	}
	return cols, nil
}

const primaryKeyQuery = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	WHERE tc.constraint_type = 'PRIMARY KEY' AND kcu.table_name = $1`

// PrimaryKeyColumn returns the table's primary key column, or "" when the
// table has no discoverable single-column primary key.
func (c *Catalog) PrimaryKeyColumn(table string) (string, error) {
	_, rows, err := c.Session.Query(primaryKeyQuery, table)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0][0].(string), nil
}

const childTablesQuery = `
	SELECT DISTINCT kcu.table_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY' AND ccu.table_name = $1
	ORDER BY kcu.table_name`

// ChildTables returns the tables referencing the given table via any foreign key
func (c *Catalog) ChildTables(table string) ([]string, error) {
	_, rows, err := c.Session.Query(childTablesQuery, table)
	if err != nil {
		return nil, err
	}
	var children []string
	for _, row := range rows {
		children = append(children, row[0].(string))
	}
	return children, nil
}

const foreignKeysQuery = `
	SELECT kcu.column_name, ccu.table_name, ccu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY' AND kcu.table_name = $1`

// ForeignKeysOf maps each foreign key column of the table to the parent
// table and column it references.
func (c *Catalog) ForeignKeysOf(table string) (map[string]models.ForeignKeyRef, error) {
	_, rows, err := c.Session.Query(foreignKeysQuery, table)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]models.ForeignKeyRef)
	for _, row := range rows {
		refs[row[0].(string)] = models.ForeignKeyRef{
			ParentTable:  row[1].(string),
			ParentColumn: row[2].(string),
		}
	}
	return refs, nil
}

const joinEdgeQuery = `
	SELECT kcu.table_name, kcu.column_name, ccu.table_name, ccu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY'
	  AND ((kcu.table_name = $1 AND ccu.table_name = $2)
	    OR (kcu.table_name = $2 AND ccu.table_name = $1))
	ORDER BY tc.constraint_name
	LIMIT 1`

// JoinEdge finds a single-hop foreign key edge between two tables,
// checking both directions. When several edges exist the one with the
// alphabetically first constraint name wins, which keeps the choice
// deterministic for a given schema. Returns nil when no relation exists.
func (c *Catalog) JoinEdge(t1, t2 string) (*models.ForeignKeyEdge, error) {
	_, rows, err := c.Session.Query(joinEdgeQuery, t1, t2)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &models.ForeignKeyEdge{
		ChildTable:   row[0].(string),
		ChildColumn:  row[1].(string),
		ParentTable:  row[2].(string),
		ParentColumn: row[3].(string),
	}, nil
}

const notNullNoDefaultQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = 'public'
	AND table_name = $1
	AND is_nullable = 'NO'
	AND column_default IS NULL`

// NotNullNoDefaultColumns returns the columns a generated row must
// populate: NOT NULL and without a database-side default. Serial and
// defaulted columns are left to the database's own mechanism.
func (c *Catalog) NotNullNoDefaultColumns(table string) (map[string]bool, error) {
	_, rows, err := c.Session.Query(notNullNoDefaultQuery, table)
	if err != nil {
		return nil, err
	}
	required := make(map[string]bool)
	for _, row := range rows {
		required[row[0].(string)] = true
	}
	return required, nil
}

const allForeignKeyEdgesQuery = `
	SELECT kcu.table_name, ccu.table_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public'`

// DependencyOrder returns all tables ordered so that foreign key parents
// come before their children. When the FK graph has a cycle the
// lexicographic table order is returned instead.
func (c *Catalog) DependencyOrder() ([]string, error) {
	tables, err := c.ListTables()
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, nil
	}

	indexOf := make(map[string]int, len(tables))
	for i, t := range tables {
		indexOf[t] = i
	}

	_, rows, err := c.Session.Query(allForeignKeyEdgesQuery)
	if err != nil {
		return nil, err
	}

	g := graph.New(len(tables))
	for _, row := range rows {
		child := row[0].(string)
		parent := row[1].(string)
		if child == parent {
			continue
		}
		ci, ok1 := indexOf[child]
		pi, ok2 := indexOf[parent]
		if ok1 && ok2 {
			g.Add(pi, ci)
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		c.Logger.Warning("Foreign key graph has a cycle, using lexicographic table order")
		return tables, nil
	}

	ordered := make([]string, 0, len(tables))
	for _, i := range order {
		ordered = append(ordered, tables[i])
	}
	return ordered, nil
}
