package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches exactly one of them via
// errors.Is, so callers can branch on the category without knowing the type.
var (
	ErrValidation       = errors.New("validation failed")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrStateConflict    = errors.New("operation not allowed in current state")
	ErrNotFound         = errors.New("not found")
	ErrInsufficient     = errors.New("insufficient balance")
	ErrDuplicate        = errors.New("already exists")
	ErrTenantRequired   = errors.New("tenant context required")
	ErrTenantMismatch   = errors.New("aggregate belongs to another tenant")
	ErrConcurrency      = errors.New("stale write")
)

// Kind classifies an error for callers that map failures to responses.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindStateConflict
	KindNotFound
	KindInsufficient
	KindConflict
	KindPrecondition
	KindConcurrency
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	case KindInsufficient:
		return "insufficient"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	case KindConcurrency:
		return "concurrency"
	default:
		return "infrastructure"
	}
}

// KindOf reports the category of err. Anything that is not a domain error is
// treated as an infrastructure failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation), errors.Is(err, ErrCurrencyMismatch):
		return KindValidation
	case errors.Is(err, ErrStateConflict):
		return KindStateConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficient):
		return KindInsufficient
	case errors.Is(err, ErrDuplicate):
		return KindConflict
	case errors.Is(err, ErrTenantRequired), errors.Is(err, ErrTenantMismatch):
		return KindPrecondition
	case errors.Is(err, ErrConcurrency):
		return KindConcurrency
	default:
		return KindInfrastructure
	}
}

// IsRetryable reports whether the operation that produced err may succeed if
// it is reloaded and attempted again.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// ValidationError is returned when input to a factory or behavior is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CurrencyMismatchError is returned when two amounts in different currencies
// are combined or compared.
type CurrencyMismatchError struct {
	Op    string
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("cannot %s %s and %s amounts", e.Op, e.Left, e.Right)
}

func (e *CurrencyMismatchError) Is(target error) bool { return target == ErrCurrencyMismatch }

// StateError is returned when a behavior is not valid for the aggregate's
// current state.
type StateError struct {
	Entity string
	Action string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: cannot %s: %s", e.Entity, e.Action, e.Reason)
}

func (e *StateError) Is(target error) bool { return target == ErrStateConflict }

// TransitionError is returned when a lifecycle event is not allowed.
type TransitionError struct {
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

func (e *TransitionError) Is(target error) bool { return target == ErrStateConflict }

// NotFoundError is returned when an entity cannot be located.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientError is returned when a quantity exceeds what is available.
type InsufficientError struct {
	Resource  string
	Requested int64
	Available int64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient %s: requested %d, available %d", e.Resource, e.Requested, e.Available)
}

func (e *InsufficientError) Is(target error) bool { return target == ErrInsufficient }

// DuplicateError is returned when a unique attribute is already taken.
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s %q is already in use", e.Entity, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// ConcurrencyError is returned when a write targets a row that changed since
// it was loaded.
type ConcurrencyError struct {
	Entity  string
	ID      string
	Version int
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently (expected version %d)", e.Entity, e.ID, e.Version)
}

func (e *ConcurrencyError) Is(target error) bool { return target == ErrConcurrency }

// Retryable marks stale writes as safe to retry after a reload.
func (e *ConcurrencyError) Retryable() bool { return true }
