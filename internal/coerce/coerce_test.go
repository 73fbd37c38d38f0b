package coerce

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynoquery/dynoquery/pkg/models"
)

func TestCastBlankYieldsNull(t *testing.T) {
	categories := []models.TypeCategory{
		models.Integer, models.Decimal, models.Boolean,
		models.Text, models.Temporal, models.Unknown,
	}
	for _, cat := range categories {
		for _, raw := range []string{"", "   ", "\t"} {
			v, err := Cast(raw, cat)
			require.NoError(t, err, "category %s raw %q", cat, raw)
			assert.Nil(t, v, "category %s raw %q", cat, raw)
		}
	}
}

func TestCastInteger(t *testing.T) {
	v, err := Cast("42", models.Integer)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = Cast(" -17 ", models.Integer)
	require.NoError(t, err)
	assert.Equal(t, int64(-17), v)

	_, err = Cast("forty-two", models.Integer)
	var castErr *CastError
	require.ErrorAs(t, err, &castErr)
	assert.Equal(t, "forty-two", castErr.Raw)
	assert.Equal(t, models.Integer, castErr.Category)

	_, err = Cast("3.5", models.Integer)
	assert.Error(t, err)
}

func TestCastDecimal(t *testing.T) {
	v, err := Cast("3.25", models.Decimal)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v)

	v, err = Cast("10", models.Decimal)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	_, err = Cast("ten", models.Decimal)
	var castErr *CastError
	assert.ErrorAs(t, err, &castErr)
}

func TestCastBoolean(t *testing.T) {
	trueTokens := []string{"true", "T", "1", "yes", "Y", "YES"}
	for _, tok := range trueTokens {
		v, err := Cast(tok, models.Boolean)
		require.NoError(t, err, "token %q", tok)
		assert.Equal(t, true, v, "token %q", tok)
	}

	falseTokens := []string{"false", "F", "0", "no", "N", "No"}
	for _, tok := range falseTokens {
		v, err := Cast(tok, models.Boolean)
		require.NoError(t, err, "token %q", tok)
		assert.Equal(t, false, v, "token %q", tok)
	}

	_, err := Cast("maybe", models.Boolean)
	var castErr *CastError
	assert.ErrorAs(t, err, &castErr)
}

func TestCastPassThrough(t *testing.T) {
	v, err := Cast("hello", models.Text)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	// Temporal values are not validated locally; the database parses them.
	v, err = Cast("2023-05-01 10:00:00", models.Temporal)
	require.NoError(t, err)
	assert.Equal(t, "2023-05-01 10:00:00", v)

	v, err = Cast("whatever", models.Unknown)
	require.NoError(t, err)
	assert.Equal(t, "whatever", v)
}

func TestCastErrorMessage(t *testing.T) {
	_, err := Cast("oops", models.Integer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"oops"`)
	assert.Contains(t, err.Error(), "integer")
	assert.False(t, errors.Is(err, errors.New("unrelated")))
}

func TestParseBool(t *testing.T) {
	v, ok := ParseBool(" t ")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = ParseBool("n")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = ParseBool("2")
	assert.False(t, ok)
}
