package sqlbuild

import (
	"strconv"
	"strings"

	"github.com/dynoquery/dynoquery/internal/coerce"
	"github.com/dynoquery/dynoquery/pkg/models"
)

// TruePredicate is emitted whenever filter input selects nothing
const TruePredicate = "TRUE"

// Filter carries the raw filter input for one column. Which fields are
// meaningful depends on the column's type category: Lower/Upper for
// numeric and temporal ranges, Pattern for text, Value otherwise.
type Filter struct {
	Lower   string
	Upper   string
	Pattern string
	Value   string
}

// BuildPredicate emits a boolean SQL fragment for one column filter.
// The predicate shape is picked by type category. Values are embedded as
// escaped literals rather than bound parameters; this mirrors the
// ad-hoc search path only, never insert or update.
func BuildPredicate(table, column string, cat models.TypeCategory, f Filter) string {
	ref := ColumnRef(table, column)

	switch cat {
	case models.Integer, models.Decimal:
		return rangePredicate(ref, f.Lower, f.Upper, numericLiteral)
	case models.Text:
		pattern := strings.TrimSpace(f.Pattern)
		if pattern == "" {
			return TruePredicate
		}
		return ref + " ILIKE " + QuoteLiteral(pattern)
	case models.Boolean:
		v, ok := coerce.ParseBool(f.Value)
		if !ok {
			// Unrecognized tokens are silently permissive.
			return TruePredicate
		}
		if v {
			return ref + " = TRUE"
		}
		return ref + " = FALSE"
	case models.Temporal:
		return rangePredicate(ref, f.Lower, f.Upper, QuoteLiteral)
	default:
		v := strings.TrimSpace(f.Value)
		if v == "" {
			return TruePredicate
		}
		return ref + " = " + QuoteLiteral(v)
	}
}

func rangePredicate(ref, lower, upper string, literal func(string) string) string {
	var clauses []string
	if lo := strings.TrimSpace(lower); lo != "" {
		clauses = append(clauses, ref+" >= "+literal(lo))
	}
	if hi := strings.TrimSpace(upper); hi != "" {
		clauses = append(clauses, ref+" <= "+literal(hi))
	}
	if len(clauses) == 0 {
		return TruePredicate
	}
	return strings.Join(clauses, " AND ")
}

// numericLiteral validates a numeric bound. Input that fails to parse is
// replaced by the literal 0, a documented permissive fallback.
func numericLiteral(s string) string {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "0"
	}
	return s
}
