// Package coerce converts raw user input strings into column-typed values.
// It is the single place where type-specific input interpretation lives;
// every write path routes through Cast.
package coerce

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dynoquery/dynoquery/pkg/models"
)

// CastError reports a raw value that does not match its column's type category
type CastError struct {
	Raw      string
	Category models.TypeCategory
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %q to %s", e.Raw, e.Category)
}

// ParseBool interprets the accepted boolean tokens. The second return
// value reports whether the token was recognized at all.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, true
	case "false", "f", "0", "no", "n":
		return false, true
	default:
		return false, false
	}
}

// Cast converts a raw string into a value matching the column's type
// category. A blank string yields nil (SQL NULL) for every category.
// Temporal values pass through as text; the database parses them.
func Cast(raw string, cat models.TypeCategory) (interface{}, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	switch cat {
	case models.Integer:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &CastError{Raw: raw, Category: cat}
		}
		return v, nil
	case models.Decimal:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &CastError{Raw: raw, Category: cat}
		}
		return v, nil
	case models.Boolean:
		v, ok := ParseBool(s)
		if !ok {
			return nil, &CastError{Raw: raw, Category: cat}
		}
		return v, nil
	default:
		// Text, Temporal and Unknown are passed through unchanged.
		return s, nil
	}
}
