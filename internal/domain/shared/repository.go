package shared

import "context"

// Op is a comparison operator in a query condition.
type Op string

const (
	OpEq   Op = "="
	OpNe   Op = "<>"
	OpLt   Op = "<"
	OpLe   Op = "<="
	OpGt   Op = ">"
	OpGe   Op = ">="
	OpLike Op = "LIKE"
)

// Condition compares a named field with a value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, v any) Condition { return Condition{Field: field, Op: OpEq, Value: v} }
func Ne(field string, v any) Condition { return Condition{Field: field, Op: OpNe, Value: v} }
func Lt(field string, v any) Condition { return Condition{Field: field, Op: OpLt, Value: v} }
func Le(field string, v any) Condition { return Condition{Field: field, Op: OpLe, Value: v} }
func Gt(field string, v any) Condition { return Condition{Field: field, Op: OpGt, Value: v} }
func Ge(field string, v any) Condition { return Condition{Field: field, Op: OpGe, Value: v} }
func Like(field, pattern string) Condition { return Condition{Field: field, Op: OpLike, Value: pattern} }

// Query is the predicate accepted by repository lookups. Conditions are
// combined with AND. Soft-deleted rows are excluded unless IncludeDeleted is set.
type Query struct {
	Where          []Condition
	IncludeDeleted bool
	OrderBy        string
	Descending     bool
	Limit          int
	Offset         int
}

// Where builds a query from conditions.
func Where(conds ...Condition) Query {
	return Query{Where: conds}
}

// WithDeleted returns a copy of q that also matches soft-deleted rows.
func (q Query) WithDeleted() Query {
	q.IncludeDeleted = true
	return q
}

// Sorted returns a copy of q ordered by field.
func (q Query) Sorted(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// Page returns a copy of q limited to one page.
func (q Query) Page(limit, offset int) Query {
	q.Limit = limit
	q.Offset = offset
	return q
}

// Repository is the persistence contract shared by every aggregate type.
// Add, Update and Remove register changes with the active unit of work; they
// are written when it saves.
type Repository[A any, K any] interface {
	GetByID(ctx context.Context, id K) (A, error)
	Find(ctx context.Context, q Query) ([]A, error)
	Count(ctx context.Context, q Query) (int, error)
	Any(ctx context.Context, q Query) (bool, error)
	Add(ctx context.Context, aggregate A) error
	Update(ctx context.Context, aggregate A) error
	Remove(ctx context.Context, aggregate A) error
}
