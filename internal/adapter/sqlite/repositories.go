package sqlite

import (
	"context"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/ordering"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

// Repositories is the full set of SQLite backed repositories.
type Repositories struct {
	Tenants    *TenantRepository
	Products   *ProductRepository
	Variants   *VariantRepository
	Images     *ImageRepository
	Categories *CategoryRepository
	Brands     *BrandRepository
	Customers  *CustomerRepository
	Carts      *CartRepository
	Wishlists  *WishlistRepository
	Orders     *OrderRepository
}

// NewRepositories builds every repository over store. clock is handed to
// restored aggregates.
func NewRepositories(store *Store, clock shared.Clock) Repositories {
	clock = shared.ClockOrSystem(clock)
	return Repositories{
		Tenants:    NewTenantRepository(store, clock),
		Products:   NewProductRepository(store, clock),
		Variants:   NewVariantRepository(store),
		Images:     NewImageRepository(store),
		Categories: NewCategoryRepository(store),
		Brands:     NewBrandRepository(store),
		Customers:  NewCustomerRepository(store, clock),
		Carts:      NewCartRepository(store, clock),
		Wishlists:  NewWishlistRepository(store, clock),
		Orders:     NewOrderRepository(store, clock),
	}
}

// nullable returns id, or nil when it is absent.
func nullable(id interface{ String() string }, ok bool) any {
	if !ok {
		return nil
	}
	return id.String()
}

// TenantRepository implements tenant.Repository.
type TenantRepository struct {
	*documents[*tenant.Tenant, tenant.TenantID]
}

var _ tenant.Repository = (*TenantRepository)(nil)

func NewTenantRepository(store *Store, clock shared.Clock) *TenantRepository {
	return &TenantRepository{newDocuments[*tenant.Tenant, tenant.TenantID](store, schema[*tenant.Tenant]{
		table:   "tenants",
		entity:  "tenant",
		columns: []string{"slug", "name", "status", "plan", "vertical"},
		id:      func(t *tenant.Tenant) string { return t.ID().String() },
		values: func(t *tenant.Tenant) []any {
			return []any{t.Slug(), t.Name(), t.Status(), t.Plan(), t.Vertical()}
		},
		encode: func(t *tenant.Tenant) any { return t.Snapshot() },
		decode: decoder(func(s tenant.Snapshot) (*tenant.Tenant, error) { return tenant.Restore(clock, s) }),
	})}
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug shared.Slug) (*tenant.Tenant, error) {
	return r.findOne(ctx, slug.String(), shared.Where(shared.Eq("slug", slug.String())))
}

// ProductRepository implements catalog.ProductRepository.
type ProductRepository struct {
	*documents[*catalog.Product, catalog.ProductID]
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(store *Store, clock shared.Clock) *ProductRepository {
	return &ProductRepository{newDocuments[*catalog.Product, catalog.ProductID](store, schema[*catalog.Product]{
		table:   "products",
		entity:  "product",
		scoped:  true,
		columns: []string{"sku", "name", "status", "category_id", "brand_id", "featured"},
		id:      func(p *catalog.Product) string { return p.ID().String() },
		tenant:  (*catalog.Product).TenantID,
		values: func(p *catalog.Product) []any {
			brandID, hasBrand := p.BrandID()
			return []any{p.SKU(), p.Name(), p.Status(), p.CategoryID(), nullable(brandID, hasBrand), p.IsFeatured()}
		},
		encode: func(p *catalog.Product) any { return p.Snapshot() },
		decode: decoder(func(s catalog.ProductSnapshot) (*catalog.Product, error) { return catalog.RestoreProduct(clock, s) }),
	})}
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku catalog.Sku) (*catalog.Product, error) {
	return r.findOne(ctx, sku.String(), shared.Where(shared.Eq("sku", sku.String())))
}

// VariantRepository implements catalog.VariantRepository. Variants are
// reached through their product and are not tenant scoped themselves.
type VariantRepository struct {
	*documents[*catalog.ProductVariant, catalog.VariantID]
}

var _ catalog.VariantRepository = (*VariantRepository)(nil)

func NewVariantRepository(store *Store) *VariantRepository {
	return &VariantRepository{newDocuments[*catalog.ProductVariant, catalog.VariantID](store, schema[*catalog.ProductVariant]{
		table:   "product_variants",
		entity:  "variant",
		columns: []string{"product_id", "sku", "active", "display_order"},
		id:      func(v *catalog.ProductVariant) string { return v.ID().String() },
		values: func(v *catalog.ProductVariant) []any {
			return []any{v.ProductID(), v.SKU(), v.IsActive(), v.DisplayOrder()}
		},
		encode: func(v *catalog.ProductVariant) any { return v.Snapshot() },
		decode: decoder(catalog.RestoreProductVariant),
	})}
}

func (r *VariantRepository) ListByProduct(ctx context.Context, productID catalog.ProductID) ([]*catalog.ProductVariant, error) {
	return r.Find(ctx, shared.Where(shared.Eq("product_id", productID.String())).Sorted("display_order", false))
}

// ImageRepository implements catalog.ImageRepository.
type ImageRepository struct {
	*documents[*catalog.ProductImage, catalog.ImageID]
}

var _ catalog.ImageRepository = (*ImageRepository)(nil)

func NewImageRepository(store *Store) *ImageRepository {
	return &ImageRepository{newDocuments[*catalog.ProductImage, catalog.ImageID](store, schema[*catalog.ProductImage]{
		table:   "product_images",
		entity:  "image",
		columns: []string{"product_id", "is_primary", "display_order"},
		id:      func(i *catalog.ProductImage) string { return i.ID().String() },
		values: func(i *catalog.ProductImage) []any {
			return []any{i.ProductID(), i.IsPrimary(), i.DisplayOrder()}
		},
		encode: func(i *catalog.ProductImage) any { return i.Snapshot() },
		decode: decoder(catalog.RestoreProductImage),
	})}
}

func (r *ImageRepository) ListByProduct(ctx context.Context, productID catalog.ProductID) ([]*catalog.ProductImage, error) {
	return r.Find(ctx, shared.Where(shared.Eq("product_id", productID.String())).Sorted("display_order", false))
}

// CategoryRepository implements catalog.CategoryRepository.
type CategoryRepository struct {
	*documents[*catalog.Category, catalog.CategoryID]
}

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{newDocuments[*catalog.Category, catalog.CategoryID](store, schema[*catalog.Category]{
		table:   "categories",
		entity:  "category",
		scoped:  true,
		columns: []string{"slug", "name", "parent_id", "active"},
		id:      func(c *catalog.Category) string { return c.ID().String() },
		tenant:  (*catalog.Category).TenantID,
		values: func(c *catalog.Category) []any {
			parentID, hasParent := c.ParentID()
			return []any{c.Slug(), c.Name(), nullable(parentID, hasParent), c.IsActive()}
		},
		encode: func(c *catalog.Category) any { return c.Snapshot() },
		decode: decoder(catalog.RestoreCategory),
	})}
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug shared.Slug) (*catalog.Category, error) {
	return r.findOne(ctx, slug.String(), shared.Where(shared.Eq("slug", slug.String())))
}

// BrandRepository implements catalog.BrandRepository.
type BrandRepository struct {
	*documents[*catalog.Brand, catalog.BrandID]
}

var _ catalog.BrandRepository = (*BrandRepository)(nil)

func NewBrandRepository(store *Store) *BrandRepository {
	return &BrandRepository{newDocuments[*catalog.Brand, catalog.BrandID](store, schema[*catalog.Brand]{
		table:   "brands",
		entity:  "brand",
		scoped:  true,
		columns: []string{"slug", "name", "active"},
		id:      func(b *catalog.Brand) string { return b.ID().String() },
		tenant:  (*catalog.Brand).TenantID,
		values: func(b *catalog.Brand) []any {
			return []any{b.Slug(), b.Name(), b.IsActive()}
		},
		encode: func(b *catalog.Brand) any { return b.Snapshot() },
		decode: decoder(catalog.RestoreBrand),
	})}
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug shared.Slug) (*catalog.Brand, error) {
	return r.findOne(ctx, slug.String(), shared.Where(shared.Eq("slug", slug.String())))
}

// CustomerRepository implements customer.Repository.
type CustomerRepository struct {
	*documents[*customer.Customer, customer.CustomerID]
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(store *Store, clock shared.Clock) *CustomerRepository {
	return &CustomerRepository{newDocuments[*customer.Customer, customer.CustomerID](store, schema[*customer.Customer]{
		table:   "customers",
		entity:  "customer",
		scoped:  true,
		columns: []string{"email", "status"},
		id:      func(c *customer.Customer) string { return c.ID().String() },
		tenant:  (*customer.Customer).TenantID,
		values: func(c *customer.Customer) []any {
			return []any{c.Email(), c.Status()}
		},
		encode: func(c *customer.Customer) any { return c.Snapshot() },
		decode: decoder(func(s customer.CustomerSnapshot) (*customer.Customer, error) {
			return customer.RestoreCustomer(clock, s)
		}),
	})}
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email shared.Email) (*customer.Customer, error) {
	return r.findOne(ctx, email.String(), shared.Where(shared.Eq("email", email.String())))
}

// CartRepository implements shopping.CartRepository.
type CartRepository struct {
	*documents[*shopping.ShoppingCart, shopping.CartID]
}

var _ shopping.CartRepository = (*CartRepository)(nil)

func NewCartRepository(store *Store, clock shared.Clock) *CartRepository {
	return &CartRepository{newDocuments[*shopping.ShoppingCart, shopping.CartID](store, schema[*shopping.ShoppingCart]{
		table:   "carts",
		entity:  "cart",
		scoped:  true,
		columns: []string{"session_id", "customer_id", "status", "expires_at"},
		id:      func(c *shopping.ShoppingCart) string { return c.ID().String() },
		tenant:  (*shopping.ShoppingCart).TenantID,
		values: func(c *shopping.ShoppingCart) []any {
			customerID, assigned := c.CustomerID()
			return []any{c.SessionID(), nullable(customerID, assigned), c.Status(), c.ExpiresAt()}
		},
		encode: func(c *shopping.ShoppingCart) any { return c.Snapshot() },
		decode: decoder(func(s shopping.CartSnapshot) (*shopping.ShoppingCart, error) {
			return shopping.RestoreCart(clock, s)
		}),
	})}
}

func (r *CartRepository) GetBySession(ctx context.Context, sessionID string) (*shopping.ShoppingCart, error) {
	return r.findOne(ctx, sessionID, shared.Where(
		shared.Eq("session_id", sessionID),
		shared.Eq("status", string(shopping.CartActive)),
	).Sorted("created_at", true))
}

// WishlistRepository implements shopping.WishlistRepository.
type WishlistRepository struct {
	*documents[*shopping.Wishlist, shopping.WishlistID]
}

var _ shopping.WishlistRepository = (*WishlistRepository)(nil)

func NewWishlistRepository(store *Store, clock shared.Clock) *WishlistRepository {
	return &WishlistRepository{newDocuments[*shopping.Wishlist, shopping.WishlistID](store, schema[*shopping.Wishlist]{
		table:   "wishlists",
		entity:  "wishlist",
		scoped:  true,
		columns: []string{"customer_id", "public"},
		id:      func(w *shopping.Wishlist) string { return w.ID().String() },
		tenant:  (*shopping.Wishlist).TenantID,
		values: func(w *shopping.Wishlist) []any {
			return []any{w.CustomerID(), w.IsPublic()}
		},
		encode: func(w *shopping.Wishlist) any { return w.Snapshot() },
		decode: decoder(func(s shopping.WishlistSnapshot) (*shopping.Wishlist, error) {
			return shopping.RestoreWishlist(clock, s)
		}),
	})}
}

// OrderRepository implements ordering.Repository.
type OrderRepository struct {
	*documents[*ordering.Order, ordering.OrderID]
}

var _ ordering.Repository = (*OrderRepository)(nil)

func NewOrderRepository(store *Store, clock shared.Clock) *OrderRepository {
	return &OrderRepository{newDocuments[*ordering.Order, ordering.OrderID](store, schema[*ordering.Order]{
		table:   "orders",
		entity:  "order",
		scoped:  true,
		columns: []string{"order_number", "customer_id", "status", "payment_status"},
		id:      func(o *ordering.Order) string { return o.ID().String() },
		tenant:  (*ordering.Order).TenantID,
		values: func(o *ordering.Order) []any {
			return []any{o.Number(), o.CustomerID(), o.Status(), o.PaymentStatus()}
		},
		encode: func(o *ordering.Order) any { return o.Snapshot() },
		decode: decoder(func(s ordering.OrderSnapshot) (*ordering.Order, error) {
			return ordering.RestoreOrder(clock, s)
		}),
	})}
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number ordering.OrderNumber) (*ordering.Order, error) {
	return r.findOne(ctx, number.String(), shared.Where(shared.Eq("order_number", number.String())))
}
