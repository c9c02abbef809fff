package transaction

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Trashed selects which soft-delete states a query sees.
type Trashed string

const (
	// WithoutTrashed hides soft-deleted rows; it is the default scope.
	WithoutTrashed Trashed = "none"
	// OnlyTrashed returns soft-deleted rows exclusively.
	OnlyTrashed Trashed = "only"
	// WithTrashed returns rows regardless of their soft-delete state.
	WithTrashed Trashed = "with"
)

// ParseTrashed reads a trashed filter value; blank input means WithoutTrashed.
func ParseTrashed(raw string) (Trashed, error) {
	switch Trashed(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WithoutTrashed:
		return WithoutTrashed, nil
	case OnlyTrashed:
		return OnlyTrashed, nil
	case WithTrashed:
		return WithTrashed, nil
	default:
		return "", fmt.Errorf("unknown trashed filter %q", raw)
	}
}

func (t Trashed) apply(q *bun.SelectQuery) *bun.SelectQuery {
	switch t {
	case OnlyTrashed:
		return q.WhereDeleted()
	case WithTrashed:
		return q.WhereAllWithDeleted()
	default:
		return q
	}
}
