package records

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound is returned when no stored record satisfies a lookup
	ErrNotFound = errors.New("patient not found")
	// ErrInvalidPattern is returned when a lookup pattern is not a valid regular expression
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Store is the record store accessor. Pattern lookups are case-insensitive
// regular-expression matches and return the first stored match.
type Store interface {
	FindAll(ctx context.Context) ([]Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	FindByCondition(ctx context.Context, pattern string) (Record, error)
	FindByName(ctx context.Context, pattern string) (Record, error)
	// Insert appends records as-is: no dedup, no validation, no upsert
	Insert(ctx context.Context, recs ...Record) (int, error)
}

// caseInsensitive prefixes pattern with the (?i) flag after checking it compiles
func caseInsensitive(pattern string) (*regexp.Regexp, string, error) {
	expr := "(?i)" + pattern
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return re, expr, nil
}
