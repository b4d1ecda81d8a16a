package catalog

import (
	"context"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// ProductRepository defines the persistence contract for products.
type ProductRepository interface {
	shared.Repository[*Product, ProductID]
	GetBySKU(ctx context.Context, sku Sku) (*Product, error)
}

// VariantRepository defines the persistence contract for product variants.
type VariantRepository interface {
	shared.Repository[*ProductVariant, VariantID]
	ListByProduct(ctx context.Context, productID ProductID) ([]*ProductVariant, error)
}

// ImageRepository defines the persistence contract for product images.
type ImageRepository interface {
	shared.Repository[*ProductImage, ImageID]
	ListByProduct(ctx context.Context, productID ProductID) ([]*ProductImage, error)
}

type CategoryRepository interface {
	shared.Repository[*Category, CategoryID]
	GetBySlug(ctx context.Context, slug shared.Slug) (*Category, error)
}

type BrandRepository interface {
	shared.Repository[*Brand, BrandID]
	GetBySlug(ctx context.Context, slug shared.Slug) (*Brand, error)
}
