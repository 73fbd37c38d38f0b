package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynoquery/dynoquery/pkg/models"
)

func TestCategoryOf(t *testing.T) {
	cases := map[string]models.TypeCategory{
		"integer":                     models.Integer,
		"bigint":                      models.Integer,
		"smallint":                    models.Integer,
		"numeric":                     models.Decimal,
		"double precision":            models.Decimal,
		"real":                        models.Decimal,
		"boolean":                     models.Boolean,
		"text":                        models.Text,
		"character varying":           models.Text,
		"character":                   models.Text,
		"date":                        models.Temporal,
		"timestamp without time zone": models.Temporal,
		"timestamp with time zone":    models.Temporal,
		"time without time zone":      models.Temporal,
		"jsonb":                       models.Unknown,
		"uuid":                        models.Unknown,
		"bytea":                       models.Unknown,
	}

	for nativeType, want := range cases {
		assert.Equal(t, want, CategoryOf(nativeType), "native type %q", nativeType)
	}
}

func TestCategoryOfIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, models.Integer, CategoryOf("INTEGER"))
	assert.Equal(t, models.Temporal, CategoryOf(" Timestamp With Time Zone "))
}
