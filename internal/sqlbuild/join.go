package sqlbuild

import "github.com/dynoquery/dynoquery/pkg/models"

// EdgeFinder locates a single-hop foreign key edge between two tables,
// in either direction. A nil edge with a nil error means no relation.
type EdgeFinder interface {
	JoinEdge(t1, t2 string) (*models.ForeignKeyEdge, error)
}

// ResolveJoin builds a FROM clause joining two tables. When a foreign
// key edge exists it emits an inner join on the FK equality; otherwise it
// falls back to a cross join and reports joined=false so the caller can
// warn that results may be a full cross product.
func ResolveJoin(finder EdgeFinder, t1, t2 string) (fromClause string, joined bool, err error) {
	edge, err := finder.JoinEdge(t1, t2)
	if err != nil {
		return "", false, err
	}
	if edge == nil {
		return QuoteIdent(t1) + " CROSS JOIN " + QuoteIdent(t2), false, nil
	}
	condition := ColumnRef(edge.ChildTable, edge.ChildColumn) + " = " + ColumnRef(edge.ParentTable, edge.ParentColumn)
	return QuoteIdent(t1) + " JOIN " + QuoteIdent(t2) + " ON " + condition, true, nil
}
