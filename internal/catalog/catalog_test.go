package catalog

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynoquery/dynoquery/internal/session"
	"github.com/dynoquery/dynoquery/pkg/models"
)

func newTestCatalog(t *testing.T) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return New(session.FromDB(db, logger), logger), mock
}

func TestTableExists(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err := cat.TableExists("orders")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghosts").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	exists, err = cat.TableExists("ghosts")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("SELECT table_name").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("booking").AddRow("buyer").AddRow("route"))

	tables, err := cat.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"booking", "buyer", "route"}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTablesPropagatesError(t *testing.T) {
	cat, mock := newTestCatalog(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT table_name").WillReturnError(boom)

	_, err := cat.ListTables()
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnsNormalizesTypes(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("SELECT column_name, data_type").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id", "integer").
			AddRow("amount", "numeric").
			AddRow("note", "character varying").
			AddRow("paid", "boolean").
			AddRow("created_at", "timestamp without time zone").
			AddRow("payload", "jsonb"))

	cols, err := cat.Columns("orders")
	require.NoError(t, err)
	require.Len(t, cols, 6)

	assert.Equal(t, []string{"id", "amount", "note", "paid", "created_at", "payload"}, cols.Names())
	assert.Equal(t, models.Integer, cols[0].Category)
	assert.Equal(t, models.Decimal, cols[1].Category)
	assert.Equal(t, models.Text, cols[2].Category)
	assert.Equal(t, models.Boolean, cols[3].Category)
	assert.Equal(t, models.Temporal, cols[4].Category)
	assert.Equal(t, models.Unknown, cols[5].Category)
	assert.Equal(t, "timestamp without time zone", cols[4].NativeType)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnsTableNotFound(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("SELECT column_name, data_type").
		WithArgs("ghosts").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghosts").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := cat.Columns("ghosts")
	assert.ErrorIs(t, err, ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrimaryKeyColumn(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	pk, err := cat.PrimaryKeyColumn("orders")
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	// Absence of a primary key is a first-class state, not an error.
	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("log_entries").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	pk, err = cat.PrimaryKeyColumn("log_entries")
	require.NoError(t, err)
	assert.Equal(t, "", pk)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChildTables(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("FOREIGN KEY").
		WithArgs("customers").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("invoices").AddRow("orders"))

	children, err := cat.ChildTables("customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices", "orders"}, children)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignKeysOf(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("FOREIGN KEY").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "table_name", "column_name"}).
			AddRow("customer_id", "customers", "id").
			AddRow("route_id", "route", "route_id"))

	refs, err := cat.ForeignKeysOf("orders")
	require.NoError(t, err)
	assert.Equal(t, map[string]models.ForeignKeyRef{
		"customer_id": {ParentTable: "customers", ParentColumn: "id"},
		"route_id":    {ParentTable: "route", ParentColumn: "route_id"},
	}, refs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinEdgeBothDirections(t *testing.T) {
	cat, mock := newTestCatalog(t)

	// The edge query itself checks both roles, so argument order does not
	// change the discovered edge.
	edgeRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"child_table", "child_column", "parent_table", "parent_column"}).
			AddRow("orders", "customer_id", "customers", "id")
	}

	mock.ExpectQuery("FOREIGN KEY").
		WithArgs("orders", "customers").
		WillReturnRows(edgeRows())
	edge, err := cat.JoinEdge("orders", "customers")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "orders", edge.ChildTable)
	assert.Equal(t, "customer_id", edge.ChildColumn)
	assert.Equal(t, "customers", edge.ParentTable)
	assert.Equal(t, "id", edge.ParentColumn)

	mock.ExpectQuery("FOREIGN KEY").
		WithArgs("customers", "orders").
		WillReturnRows(edgeRows())
	edge, err = cat.JoinEdge("customers", "orders")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "orders", edge.ChildTable)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinEdgeDeterministicTieBreak(t *testing.T) {
	cat, mock := newTestCatalog(t)

	// When several FK edges link the same table pair only one row may come
	// back, picked by constraint name so the choice is stable for a given
	// schema. The clause lives in the query itself.
	assert.Contains(t, joinEdgeQuery, "ORDER BY tc.constraint_name")
	assert.Contains(t, joinEdgeQuery, "LIMIT 1")

	mock.ExpectQuery(regexp.QuoteMeta(joinEdgeQuery)).
		WithArgs("booking", "route").
		WillReturnRows(sqlmock.NewRows([]string{"child_table", "child_column", "parent_table", "parent_column"}).
			AddRow("booking", "route_id", "route", "route_id"))

	edge, err := cat.JoinEdge("booking", "route")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "route_id", edge.ChildColumn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinEdgeNoRelation(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("FOREIGN KEY").
		WithArgs("orders", "aircraft").
		WillReturnRows(sqlmock.NewRows([]string{"child_table", "child_column", "parent_table", "parent_column"}))

	edge, err := cat.JoinEdge("orders", "aircraft")
	require.NoError(t, err)
	assert.Nil(t, edge)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotNullNoDefaultColumns(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("column_default IS NULL").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("customer_id").AddRow("amount"))

	required, err := cat.NotNullNoDefaultColumns("orders")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"customer_id": true, "amount": true}, required)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDependencyOrderParentsFirst(t *testing.T) {
	cat, mock := newTestCatalog(t)

	// Lexicographic order would put the child first; the FK edge must win.
	mock.ExpectQuery("SELECT table_name").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("booking").AddRow("route"))
	mock.ExpectQuery("FOREIGN KEY").
		WillReturnRows(sqlmock.NewRows([]string{"child_table", "parent_table"}).
			AddRow("booking", "route"))

	order, err := cat.DependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"route", "booking"}, order)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDependencyOrderCycleFallsBack(t *testing.T) {
	cat, mock := newTestCatalog(t)

	mock.ExpectQuery("SELECT table_name").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("a").AddRow("b"))
	mock.ExpectQuery("FOREIGN KEY").
		WillReturnRows(sqlmock.NewRows([]string{"child_table", "parent_table"}).
			AddRow("a", "b").AddRow("b", "a"))

	order, err := cat.DependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
	require.NoError(t, mock.ExpectationsWereMet())
}
