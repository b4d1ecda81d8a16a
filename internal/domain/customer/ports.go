package customer

import (
	"context"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// Repository defines the persistence contract for customers.
type Repository interface {
	shared.Repository[*Customer, CustomerID]
	GetByEmail(ctx context.Context, email shared.Email) (*Customer, error)
}
