package catalog

import (
	"strings"

	"github.com/dynoquery/dynoquery/pkg/models"
)

// CategoryOf normalizes a PostgreSQL native type name to a type category.
// This is the only place raw type names are interpreted; unrecognized
// types become Unknown and are treated as opaque text downstream.
func CategoryOf(nativeType string) models.TypeCategory {
	dt := strings.ToLower(strings.TrimSpace(nativeType))
	switch {
	case dt == "integer" || dt == "bigint" || dt == "smallint":
		return models.Integer
	case strings.HasPrefix(dt, "numeric") || strings.HasPrefix(dt, "double") || dt == "real":
		return models.Decimal
	case dt == "boolean":
		return models.Boolean
	case strings.Contains(dt, "timestamp") || strings.Contains(dt, "date") || strings.HasPrefix(dt, "time"):
		return models.Temporal
	case strings.Contains(dt, "char") || dt == "text":
		return models.Text
	default:
		return models.Unknown
	}
}
