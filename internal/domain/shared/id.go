package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a typed identifier backed by a random UUID. The type parameter names
// the owning entity, which keeps identifiers of different entities apart at
// compile time.
type ID[T any] struct {
	value uuid.UUID
}

// NewID returns a fresh identifier.
func NewID[T any]() ID[T] {
	return ID[T]{value: uuid.New()}
}

// IDFrom wraps an existing UUID. The nil UUID is rejected.
func IDFrom[T any](u uuid.UUID) (ID[T], error) {
	if u == uuid.Nil {
		return ID[T]{}, invalid("id", "must not be empty")
	}
	return ID[T]{value: u}, nil
}

// ParseID parses the canonical string form of an identifier.
func ParseID[T any](s string) (ID[T], error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID[T]{}, invalid("id", fmt.Sprintf("%q is not a valid identifier", s))
	}
	return IDFrom[T](u)
}

func (id ID[T]) UUID() uuid.UUID { return id.value }

func (id ID[T]) IsZero() bool { return id.value == uuid.Nil }

func (id ID[T]) String() string {
	if id.IsZero() {
		return ""
	}
	return id.value.String()
}

func (id ID[T]) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID[T]) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ID[T]{}
		return nil
	}
	parsed, err := ParseID[T](string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// TenantRef names the tenant aggregate for identifier typing. The kernel owns
// TenantID because every tenant-scoped aggregate and the tenant context use it.
type TenantRef struct{}

// TenantID identifies a tenant.
type TenantID = ID[TenantRef]
