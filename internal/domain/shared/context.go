package shared

import (
	"context"
	"slices"
	"time"
)

// Clock supplies the current time. Aggregates and the unit of work never call
// time.Now directly.
type Clock interface {
	UtcNow() time.Time
	Now() time.Time
	Today() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) UtcNow() time.Time { return time.Now().UTC() }
func (SystemClock) Now() time.Time { return time.Now() }
func (SystemClock) Today() time.Time { return dateOf(time.Now()) }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) UtcNow() time.Time { return c.At.UTC() }
func (c FixedClock) Now() time.Time { return c.At }
func (c FixedClock) Today() time.Time { return dateOf(c.At) }

// ClockOrSystem returns c, or SystemClock when c is nil.
func ClockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SystemUserID is recorded in audit fields when no user is authenticated.
const SystemUserID = "system"

// Actor is the user on whose behalf an operation runs.
type Actor interface {
	UserID() string
	IsAuthenticated() bool
	Roles() []string
}

// SystemActor is used when the context carries no authenticated user.
type SystemActor struct{}

func (SystemActor) UserID() string { return SystemUserID }
func (SystemActor) IsAuthenticated() bool { return false }
func (SystemActor) Roles() []string { return nil }

// User is an authenticated actor.
type User struct {
	ID        string
	RoleNames []string
}

func (u User) UserID() string { return u.ID }
func (u User) IsAuthenticated() bool { return u.ID != "" }
func (u User) Roles() []string { return slices.Clone(u.RoleNames) }

func (u User) HasRole(role string) bool { return slices.Contains(u.RoleNames, role) }

type actorKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor in ctx, or SystemActor.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok && a != nil {
		return a
	}
	return SystemActor{}
}

// TenantScope is the tenant an operation is bound to.
type TenantScope interface {
	TenantID() TenantID
	HasTenant() bool
}

type tenantScope struct {
	id TenantID
}

func (s tenantScope) TenantID() TenantID { return s.id }
func (s tenantScope) HasTenant() bool { return !s.id.IsZero() }

type tenantKey struct{}

// WithTenant binds ctx to a tenant.
func WithTenant(ctx context.Context, id TenantID) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// ScopeFrom returns the tenant scope of ctx. HasTenant is false when none was bound.
func ScopeFrom(ctx context.Context) TenantScope {
	id, _ := ctx.Value(tenantKey{}).(TenantID)
	return tenantScope{id: id}
}

// TenantFrom returns the tenant bound to ctx.
func TenantFrom(ctx context.Context) (TenantID, bool) {
	scope := ScopeFrom(ctx)
	return scope.TenantID(), scope.HasTenant()
}

// RequireTenant returns the tenant bound to ctx or ErrTenantRequired.
func RequireTenant(ctx context.Context) (TenantID, error) {
	id, ok := TenantFrom(ctx)
	if !ok {
		return TenantID{}, ErrTenantRequired
	}
	return id, nil
}
