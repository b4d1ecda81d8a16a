package ordering

import (
	"context"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// Repository defines the persistence contract for orders.
type Repository interface {
	shared.Repository[*Order, OrderID]
	GetByNumber(ctx context.Context, number OrderNumber) (*Order, error)
}
