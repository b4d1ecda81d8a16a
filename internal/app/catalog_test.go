package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

func TestCatalogService_CreateProduct(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	cat := e.category(t, ctx)
	e.sink.Reset()

	p, err := e.catalog.CreateProduct(ctx, app.CreateProductCommand{
		Name:         "Runner",
		Description:  "Lightweight road shoe",
		SKU:          "run-01",
		Price:        shared.MustMoney("49.90", "USD"),
		Type:         catalog.TypePhysical,
		CategoryID:   cat.ID(),
		InitialStock: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusDraft, p.Status())
	assert.Equal(t, 4, p.StockQuantity())
	assert.True(t, p.Cost().IsZero())
	assert.Equal(t, "USD", p.Cost().Currency())
	assert.Contains(t, e.sink.Names(), "catalog.product_created")

	got, err := e.catalog.GetProduct(ctx, app.GetProductQuery{ProductID: p.ID()})
	require.NoError(t, err)
	assert.Equal(t, "49.90", got.Price().Amount().StringFixed(2))
	assert.Equal(t, p.SKU(), got.SKU())
}

func TestCatalogService_CreateProduct_Errors(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	e.activeProduct(t, ctx, "RUN-01", "10.00", 1)

	_, err := e.catalog.CreateProduct(ctx, app.CreateProductCommand{
		Name: "Copy", Description: "Test product", SKU: "RUN-01", Price: shared.MustMoney("5", "USD"), Type: catalog.TypePhysical,
		CategoryID: shared.NewID[catalog.CategoryRef](),
	})
	assert.ErrorIs(t, err, shared.ErrDuplicate)

	_, err = e.catalog.CreateProduct(ctx, app.CreateProductCommand{
		Name: "Orphan", Description: "Test product", SKU: "ORPHAN", Price: shared.MustMoney("5", "USD"), Type: catalog.TypePhysical,
		CategoryID: shared.NewID[catalog.CategoryRef](),
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	cat, err := e.repos.Categories.GetBySlug(ctx, "shoes")
	require.NoError(t, err)
	_, err = e.catalog.CreateProduct(ctx, app.CreateProductCommand{
		Name: "Bare", SKU: "BARE-1", Price: shared.MustMoney("5", "USD"), Type: catalog.TypePhysical, CategoryID: cat.ID(),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = e.catalog.CreateProduct(context.Background(), app.CreateProductCommand{
		Name: "Nowhere", Description: "Test product", SKU: "NOWHERE", Price: shared.MustMoney("5", "USD"), Type: catalog.TypePhysical,
	})
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestCatalogService_SKUIsScopedPerTenant(t *testing.T) {
	e := newEnv(t)
	first, _ := e.tenantCtx(t, "first", tenant.VerticalRetail)
	second, _ := e.tenantCtx(t, "second", tenant.VerticalRetail)

	p := e.activeProduct(t, first, "SHARED-1", "10.00", 1)
	e.activeProduct(t, second, "SHARED-1", "12.00", 1)

	_, err := e.catalog.GetProduct(second, app.GetProductQuery{ProductID: p.ID()})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCatalogService_StatusAndStock(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	p := e.activeProduct(t, ctx, "RUN-01", "10.00", 0)
	assert.Equal(t, catalog.StatusOutOfStock, p.Status(), "activating without stock")

	p, err := e.catalog.AdjustStock(ctx, app.AdjustStockCommand{ProductID: p.ID(), Delta: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity())
	assert.Equal(t, catalog.StatusActive, p.Status())

	_, err = e.catalog.AdjustStock(ctx, app.AdjustStockCommand{ProductID: p.ID(), Delta: -5})
	assert.ErrorIs(t, err, shared.ErrInsufficient)

	p, err = e.catalog.Discontinue(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusDiscontinued, p.Status())

	_, err = e.catalog.Activate(ctx, p.ID())
	assert.ErrorIs(t, err, shared.ErrStateConflict)
}

func TestCatalogService_UpdatePrice(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	p := e.activeProduct(t, ctx, "RUN-01", "10.00", 1)
	e.sink.Reset()

	p, err := e.catalog.UpdatePrice(ctx, app.UpdatePriceCommand{ProductID: p.ID(), Price: shared.MustMoney("12.50", "USD")})
	require.NoError(t, err)
	assert.Equal(t, "12.50", p.Price().Amount().StringFixed(2))
	assert.Equal(t, []string{"catalog.product_price_changed"}, e.sink.Names())
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	p := e.activeProduct(t, ctx, "RUN-01", "10.00", 1)

	require.NoError(t, e.catalog.DeleteProduct(ctx, app.DeleteProductCommand{ProductID: p.ID()}))

	_, err := e.catalog.GetProduct(ctx, app.GetProductQuery{ProductID: p.ID()})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	deleted, err := e.repos.Products.Find(ctx, shared.Where(shared.Eq("sku", "RUN-01")).WithDeleted())
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.True(t, deleted[0].IsDeleted())
}

func TestCatalogService_VariantsAndImages(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	p := e.activeProduct(t, ctx, "RUN-01", "10.00", 1)

	v, err := e.catalog.AddVariant(ctx, app.AddVariantCommand{
		ProductID:  p.ID(),
		Name:       "Size 42",
		SKU:        "RUN-01-42",
		Price:      shared.MustMoney("11.00", "USD"),
		Stock:      2,
		Attributes: map[string]string{"size": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v.StockQuantity())
	assert.Equal(t, "42", v.Attributes()["size"])

	_, err = e.catalog.AddVariant(ctx, app.AddVariantCommand{ProductID: p.ID(), Name: "Again", SKU: "RUN-01-42", Price: shared.MustMoney("11.00", "USD")})
	assert.ErrorIs(t, err, shared.ErrDuplicate)

	first, err := e.catalog.AddImage(ctx, app.AddImageCommand{ProductID: p.ID(), URL: "https://cdn.test/a.png"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary(), "first image becomes primary")

	second, err := e.catalog.AddImage(ctx, app.AddImageCommand{ProductID: p.ID(), URL: "https://cdn.test/b.png", Primary: true})
	require.NoError(t, err)
	assert.True(t, second.IsPrimary())

	images, err := e.repos.Images.ListByProduct(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, images, 2)
	primaries := 0
	for _, img := range images {
		if img.IsPrimary() {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestCatalogService_TaxonomySlugs(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shoes", tenant.VerticalRetail)
	e.category(t, ctx)

	_, err := e.catalog.CreateCategory(ctx, app.CreateCategoryCommand{Name: "Shoes again", Slug: "shoes"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)

	b, err := e.catalog.CreateBrand(ctx, app.CreateBrandCommand{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", b.Name())

	active := catalog.StatusActive
	e.activeProduct(t, ctx, "RUN-01", "10.00", 1)
	listed, err := e.catalog.ListProducts(ctx, app.ListProductsQuery{Status: &active})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
