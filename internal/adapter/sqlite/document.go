package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

const timeFormat = "2006-01-02T15:04:05.000000000Z"

// schema maps an aggregate onto a table. The aggregate itself is stored as
// its JSON snapshot in the data column; the columns listed here are copied
// out of it so they can be filtered, sorted and constrained.
type schema[A any] struct {
	table  string
	entity string
	// scoped tables carry tenant_id and are only visible to their tenant.
	scoped  bool
	columns []string
	id      func(A) string
	tenant  func(A) shared.TenantID
	values  func(A) []any
	encode  func(A) any
	decode  func(data []byte) (A, error)
}

type key interface {
	String() string
}

// documents is the generic repository behind every aggregate repository.
// Writes are registered with the unit of work in ctx and executed when it
// saves.
type documents[A any, K key] struct {
	store  *Store
	schema schema[A]
}

func newDocuments[A any, K key](store *Store, s schema[A]) *documents[A, K] {
	return &documents[A, K]{store: store, schema: s}
}

func (r *documents[A, K]) GetByID(ctx context.Context, id K) (A, error) {
	return r.findOne(ctx, id.String(), shared.Where(shared.Eq("id", id.String())))
}

// findOne returns the first row matching q or a NotFoundError naming what.
func (r *documents[A, K]) findOne(ctx context.Context, what string, q shared.Query) (A, error) {
	found, err := r.Find(ctx, q.Page(1, 0))
	if err != nil {
		var zero A
		return zero, err
	}
	if len(found) == 0 {
		var zero A
		return zero, &shared.NotFoundError{Entity: r.schema.entity, ID: what}
	}
	return found[0], nil
}

func (r *documents[A, K]) Find(ctx context.Context, q shared.Query) ([]A, error) {
	where, args, err := r.where(ctx, q)
	if err != nil {
		return nil, err
	}
	query := `SELECT data, version FROM ` + r.schema.table + where

	orderBy := "created_at"
	if q.OrderBy != "" {
		if !r.known(q.OrderBy) {
			return nil, &shared.ValidationError{Field: "order_by", Reason: "unknown field " + q.OrderBy}
		}
		orderBy = q.OrderBy
	}
	query += ` ORDER BY ` + orderBy
	if q.Descending {
		query += ` DESC`
	}
	query += `, id`

	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
		if q.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, q.Offset)
		}
	}

	rows, err := r.store.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.schema.table, err)
	}
	defer rows.Close()

	var out []A
	for rows.Next() {
		var (
			data    []byte
			version int
		)
		if err := rows.Scan(&data, &version); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", r.schema.entity, err)
		}
		a, err := r.schema.decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", r.schema.entity, err)
		}
		if v, ok := any(a).(shared.VersionTracked); ok {
			v.SetVersion(version)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *documents[A, K]) Count(ctx context.Context, q shared.Query) (int, error) {
	where, args, err := r.where(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.store.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM `+r.schema.table+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.schema.table, err)
	}
	return n, nil
}

func (r *documents[A, K]) Any(ctx context.Context, q shared.Query) (bool, error) {
	n, err := r.Count(ctx, q)
	return n > 0, err
}

func (r *documents[A, K]) Add(ctx context.Context, a A) error {
	if err := r.checkTenant(ctx, a); err != nil {
		return err
	}
	return uow.Register(ctx, a, uow.Added, r.persister(a))
}

func (r *documents[A, K]) Update(ctx context.Context, a A) error {
	if err := r.checkTenant(ctx, a); err != nil {
		return err
	}
	return uow.Register(ctx, a, uow.Modified, r.persister(a))
}

// Remove registers a deletion. Soft-deletable aggregates are flagged and
// updated by the unit of work; the rest are deleted.
func (r *documents[A, K]) Remove(ctx context.Context, a A) error {
	if err := r.checkTenant(ctx, a); err != nil {
		return err
	}
	return uow.Register(ctx, a, uow.Deleted, r.persister(a))
}

func (r *documents[A, K]) checkTenant(ctx context.Context, a A) error {
	if !r.schema.scoped {
		return nil
	}
	current, ok := shared.TenantFrom(ctx)
	if !ok {
		return shared.ErrTenantRequired
	}
	if owner := r.schema.tenant(a); owner != current {
		return fmt.Errorf("%s %s: %w", r.schema.entity, r.schema.id(a), shared.ErrTenantMismatch)
	}
	return nil
}

func (r *documents[A, K]) persister(a A) uow.Persister {
	return func(ctx context.Context, state uow.State) error {
		switch state {
		case uow.Added:
			return r.insert(ctx, a)
		case uow.Modified:
			return r.update(ctx, a)
		case uow.Deleted:
			return r.delete(ctx, a)
		}
		return fmt.Errorf("unknown state %s", state)
	}
}

func (r *documents[A, K]) insert(ctx context.Context, a A) error {
	data, err := json.Marshal(r.schema.encode(a))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", r.schema.entity, err)
	}

	cols := []string{"id", "version", "data", "created_at", "deleted_at"}
	args := []any{r.schema.id(a), 1, data, createdAt(a), deletedAt(a)}
	if r.schema.scoped {
		cols = append(cols, "tenant_id")
		args = append(args, r.schema.tenant(a).String())
	}
	cols = append(cols, r.schema.columns...)
	args = append(args, normalize(r.schema.values(a))...)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		r.schema.table, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := r.store.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if field, ok := uniqueViolation(err); ok {
			return &shared.DuplicateError{Entity: r.schema.entity, Field: field}
		}
		return fmt.Errorf("inserting %s: %w", r.schema.entity, err)
	}
	if v, ok := any(a).(shared.VersionTracked); ok {
		v.SetVersion(1)
	}
	return nil
}

func (r *documents[A, K]) update(ctx context.Context, a A) error {
	data, err := json.Marshal(r.schema.encode(a))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", r.schema.entity, err)
	}

	sets := []string{"version = version + 1", "data = ?", "deleted_at = ?"}
	args := []any{data, deletedAt(a)}
	for _, c := range r.schema.columns {
		sets = append(sets, c+" = ?")
	}
	args = append(args, normalize(r.schema.values(a))...)

	query := `UPDATE ` + r.schema.table + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, r.schema.id(a))

	v, tracked := any(a).(shared.VersionTracked)
	if tracked {
		query += ` AND version = ?`
		args = append(args, v.Version())
	}

	result, err := r.store.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			return &shared.DuplicateError{Entity: r.schema.entity, Field: field}
		}
		return fmt.Errorf("updating %s: %w", r.schema.entity, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		if tracked {
			return &shared.ConcurrencyError{Entity: r.schema.entity, ID: r.schema.id(a), Version: v.Version()}
		}
		return &shared.NotFoundError{Entity: r.schema.entity, ID: r.schema.id(a)}
	}
	if tracked {
		v.SetVersion(v.Version() + 1)
	}
	return nil
}

func (r *documents[A, K]) delete(ctx context.Context, a A) error {
	result, err := r.store.conn(ctx).ExecContext(ctx, `DELETE FROM `+r.schema.table+` WHERE id = ?`, r.schema.id(a))
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.schema.entity, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return &shared.NotFoundError{Entity: r.schema.entity, ID: r.schema.id(a)}
	}
	return nil
}

func (r *documents[A, K]) known(field string) bool {
	switch field {
	case "id", "created_at", "deleted_at":
		return true
	}
	return slices.Contains(r.schema.columns, field)
}

// where renders q as a WHERE clause, adding the tenant filter of scoped
// tables and the soft-delete filter.
func (r *documents[A, K]) where(ctx context.Context, q shared.Query) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	if r.schema.scoped {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, tenantID.String())
	}
	if !q.IncludeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	for _, c := range q.Where {
		if !r.known(c.Field) {
			return "", nil, &shared.ValidationError{Field: c.Field, Reason: "cannot filter " + r.schema.table + " by this field"}
		}
		switch c.Op {
		case shared.OpEq, shared.OpNe, shared.OpLt, shared.OpLe, shared.OpGt, shared.OpGe, shared.OpLike:
		default:
			return "", nil, &shared.ValidationError{Field: c.Field, Reason: "unsupported operator " + string(c.Op)}
		}
		if c.Value == nil {
			if c.Op == shared.OpNe {
				clauses = append(clauses, c.Field+" IS NOT NULL")
			} else {
				clauses = append(clauses, c.Field+" IS NULL")
			}
			continue
		}
		clauses = append(clauses, c.Field+" "+string(c.Op)+" ?")
		args = append(args, normalize([]any{c.Value})[0])
	}
	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// normalize converts column values to what the driver stores.
func normalize(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case time.Time:
			out[i] = t.UTC().Format(timeFormat)
		case *time.Time:
			if t != nil {
				out[i] = t.UTC().Format(timeFormat)
			}
		case bool:
			if t {
				out[i] = 1
			} else {
				out[i] = 0
			}
		case fmt.Stringer:
			out[i] = t.String()
		default:
			out[i] = v
		}
	}
	return out
}

func createdAt(a any) any {
	if c, ok := a.(interface{ CreatedAt() time.Time }); ok && !c.CreatedAt().IsZero() {
		return c.CreatedAt().UTC().Format(timeFormat)
	}
	return time.Now().UTC().Format(timeFormat)
}

func deletedAt(a any) any {
	d, ok := a.(interface{ DeletedAt() (time.Time, bool) })
	if !ok {
		return nil
	}
	if at, deleted := d.DeletedAt(); deleted {
		return at.UTC().Format(timeFormat)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// uniqueViolation reports whether err is a UNIQUE constraint failure and
// names the last column of the violated constraint.
func uniqueViolation(err error) (string, bool) {
	msg := err.Error()
	const marker = "UNIQUE constraint failed: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	cols := strings.Split(msg[i+len(marker):], ", ")
	last := cols[len(cols)-1]
	if dot := strings.LastIndex(last, "."); dot >= 0 {
		last = last[dot+1:]
	}
	if end := strings.IndexAny(last, " )"); end >= 0 {
		last = last[:end]
	}
	return last, true
}

// decoder unmarshals a snapshot of type S and restores the aggregate from it.
func decoder[S, A any](restore func(S) (A, error)) func([]byte) (A, error) {
	return func(data []byte) (A, error) {
		var s S
		if err := json.Unmarshal(data, &s); err != nil {
			var zero A
			return zero, err
		}
		return restore(s)
	}
}
