package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/adapter/sqlite"
	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
	"github.com/neomorfeo/nexcart/internal/uow"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

// recordingSink keeps the names of dispatched events in order.
type recordingSink struct {
	mu    sync.Mutex
	names []string
}

func (s *recordingSink) Dispatch(_ context.Context, e shared.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, e.EventName())
	return nil
}

func (s *recordingSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

func (s *recordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = nil
}

type env struct {
	clock     shared.FixedClock
	store     *sqlite.Store
	pipeline  *uow.Pipeline
	repos     sqlite.Repositories
	sink      *recordingSink
	tenants   *app.TenantService
	catalog   *app.CatalogService
	customers *app.CustomerService
	carts     *app.CartService
	orders    *app.OrderService
	wishlists *app.WishlistService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := shared.FixedClock{At: now}
	repos := sqlite.NewRepositories(store, clock)
	sink := &recordingSink{}
	pipeline := uow.NewPipeline(store, sink, clock, nil, nil)

	return &env{
		clock:    clock,
		store:    store,
		pipeline: pipeline,
		repos:   repos,
		sink:    sink,
		tenants: app.NewTenantService(pipeline, repos.Tenants, clock),
		catalog: app.NewCatalogService(pipeline, app.CatalogRepositories{
			Products:   repos.Products,
			Variants:   repos.Variants,
			Images:     repos.Images,
			Categories: repos.Categories,
			Brands:     repos.Brands,
		}, clock),
		customers: app.NewCustomerService(pipeline, repos.Customers, clock),
		carts:     app.NewCartService(pipeline, repos.Carts, repos.Products, repos.Variants, clock),
		orders: app.NewOrderService(pipeline, app.OrderRepositories{
			Orders:    repos.Orders,
			Carts:     repos.Carts,
			Customers: repos.Customers,
			Products:  repos.Products,
			Variants:  repos.Variants,
			Tenants:   repos.Tenants,
		}, clock),
		wishlists: app.NewWishlistService(pipeline, repos.Wishlists, repos.Customers, repos.Products, repos.Variants, clock),
	}
}

// ordersAt returns an order service whose repositories see the clock at t.
func (e *env) ordersAt(t time.Time) *app.OrderService {
	clock := shared.FixedClock{At: t}
	repos := sqlite.NewRepositories(e.store, clock)
	return app.NewOrderService(e.pipeline, app.OrderRepositories{
		Orders:    repos.Orders,
		Carts:     repos.Carts,
		Customers: repos.Customers,
		Products:  repos.Products,
		Variants:  repos.Variants,
		Tenants:   repos.Tenants,
	}, clock)
}

// tenantCtx creates an active tenant of vertical v and returns a context
// scoped to it.
func (e *env) tenantCtx(t *testing.T, slug string, v tenant.Vertical) (context.Context, *tenant.Tenant) {
	t.Helper()
	ctx := shared.WithActor(context.Background(), shared.User{ID: "admin-1"})
	tn, err := e.tenants.Create(ctx, app.CreateTenantCommand{
		Name: "Store " + slug, Slug: slug, OwnerEmail: "owner@" + slug + ".test", OwnerName: "Owner", Vertical: v,
	})
	require.NoError(t, err)
	tn, err = e.tenants.Activate(ctx, app.ActivateTenantCommand{ID: tn.ID()})
	require.NoError(t, err)
	return shared.WithTenant(ctx, tn.ID()), tn
}

func (e *env) category(t *testing.T, ctx context.Context) *catalog.Category {
	t.Helper()
	c, err := e.catalog.CreateCategory(ctx, app.CreateCategoryCommand{Name: "Shoes", Slug: "shoes"})
	require.NoError(t, err)
	return c
}

// activeProduct creates and activates a product priced at price USD.
func (e *env) activeProduct(t *testing.T, ctx context.Context, sku, price string, stock int) *catalog.Product {
	t.Helper()
	cat, err := e.repos.Categories.GetBySlug(ctx, "shoes")
	if err != nil {
		cat = e.category(t, ctx)
	}
	p, err := e.catalog.CreateProduct(ctx, app.CreateProductCommand{
		Name:         "Product " + sku,
		Description:  "Test product " + sku,
		SKU:          sku,
		Price:        shared.MustMoney(price, "USD"),
		Type:         catalog.TypePhysical,
		CategoryID:   cat.ID(),
		InitialStock: stock,
	})
	require.NoError(t, err)
	p, err = e.catalog.Activate(ctx, p.ID())
	require.NoError(t, err)
	return p
}

func (e *env) customer(t *testing.T, ctx context.Context, email string) *customer.Customer {
	t.Helper()
	c, err := e.customers.Register(ctx, app.RegisterCustomerCommand{FirstName: "Ana", LastName: "Diaz", Email: email})
	require.NoError(t, err)
	return c
}
