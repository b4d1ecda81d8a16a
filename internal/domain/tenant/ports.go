package tenant

import (
	"context"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// Repository defines the persistence contract for tenants. Tenants are not
// tenant scoped themselves.
type Repository interface {
	shared.Repository[*Tenant, TenantID]
	GetBySlug(ctx context.Context, slug shared.Slug) (*Tenant, error)
}
