// Package shopquery turns optional listing parameters into a store-agnostic
// filter specification. Repositories and the search index each translate the
// clause list into their own query language.
package shopquery

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO local-date format accepted for createdAfter/createdBefore.
const DateLayout = "2006-01-02"

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// Field names a filterable shop attribute.
type Field string

const (
	FieldInVacations Field = "inVacations"
	FieldCreatedAt   Field = "createdAt"
)

// Op tags the variant of a Clause.
type Op int

const (
	OpEq      Op = iota // Field = Value
	OpGt                // Field > Value
	OpLt                // Field < Value
	OpBetween           // Value <= Field <= Upper
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpGt:
		return "gt"
	case OpLt:
		return "lt"
	case OpBetween:
		return "between"
	default:
		return "unknown"
	}
}

// Clause is one predicate of a Filter. Upper is only set for OpBetween.
type Clause struct {
	Field Field
	Op    Op
	Value any
	Upper any
}

func Eq(f Field, v any) Clause { return Clause{Field: f, Op: OpEq, Value: v} }
func Gt(f Field, v any) Clause { return Clause{Field: f, Op: OpGt, Value: v} }
func Lt(f Field, v any) Clause { return Clause{Field: f, Op: OpLt, Value: v} }
func Between(f Field, lo, hi any) Clause { return Clause{Field: f, Op: OpBetween, Value: lo, Upper: hi} }

// Filter is the conjunction of its clauses. An empty Filter matches everything.
type Filter []Clause

// SortKey is the column a listing is ordered by. Ordering is always ascending.
type SortKey string

const (
	SortByID         SortKey = "id"
	SortByName       SortKey = "name"
	SortByCreatedAt  SortKey = "createdAt"
	SortByNbProducts SortKey = "nbProducts"
)

// ParseSortKey maps the sortBy request value to a SortKey; unknown or empty
// values fall back to SortByID.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByName, SortByCreatedAt, SortByNbProducts:
		return SortKey(s)
	default:
		return SortByID
	}
}

// Params are the already-parsed optional listing parameters.
type Params struct {
	InVacations   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Query is a complete listing request against the store.
type Query struct {
	Filter Filter
	Sort   SortKey
	Page   int
	Size   int
}

// Offset is the number of rows skipped before the requested page.
func (q Query) Offset() int { return q.Page * q.Size }

// ListFilter composes the filter used by shop listings. Both date bounds
// without a vacation flag select an inclusive range; every other
// combination uses strict bounds.
func (p Params) ListFilter() Filter {
	if p.InVacations == nil && p.CreatedAfter != nil && p.CreatedBefore != nil {
		return Filter{Between(FieldCreatedAt, *p.CreatedAfter, *p.CreatedBefore)}
	}
	return p.strict()
}

// SearchFilter composes the structured part of a full-text search: every
// supplied parameter becomes a strict clause.
func (p Params) SearchFilter() Filter { return p.strict() }

func (p Params) strict() Filter {
	f := Filter{}
	if p.InVacations != nil {
		f = append(f, Eq(FieldInVacations, *p.InVacations))
	}
	if p.CreatedAfter != nil {
		f = append(f, Gt(FieldCreatedAt, *p.CreatedAfter))
	}
	if p.CreatedBefore != nil {
		f = append(f, Lt(FieldCreatedAt, *p.CreatedBefore))
	}
	return f
}

// NewQuery assembles a listing query, normalising page coordinates.
func NewQuery(p Params, sortBy string, page, size int) Query {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Query{Filter: p.ListFilter(), Sort: ParseSortKey(sortBy), Page: page, Size: size}
}

// ParseDate parses an optional YYYY-MM-DD value. Blank input yields nil.
func ParseDate(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date formatted as YYYY-MM-DD, got %q", name, raw)
	}
	return &t, nil
}

// ParseParams parses the raw request values into Params.
func ParseParams(inVacations *bool, createdAfter, createdBefore string) (Params, error) {
	after, err := ParseDate("createdAfter", createdAfter)
	if err != nil {
		return Params{}, err
	}
	before, err := ParseDate("createdBefore", createdBefore)
	if err != nil {
		return Params{}, err
	}
	return Params{InVacations: inVacations, CreatedAfter: after, CreatedBefore: before}, nil
}
