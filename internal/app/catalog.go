package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// CatalogRepositories groups the stores the catalog service writes to.
type CatalogRepositories struct {
	Products   catalog.ProductRepository
	Variants   catalog.VariantRepository
	Images     catalog.ImageRepository
	Categories catalog.CategoryRepository
	Brands     catalog.BrandRepository
}

// CatalogService manages a tenant's products and taxonomy.
type CatalogService struct {
	pipeline *uow.Pipeline
	repos    CatalogRepositories
	clock    shared.Clock
}

func NewCatalogService(pipeline *uow.Pipeline, repos CatalogRepositories, clock shared.Clock) *CatalogService {
	return &CatalogService{pipeline: pipeline, repos: repos, clock: shared.ClockOrSystem(clock)}
}

type CreateProductCommand struct {
	Name         string
	Description  string
	SKU          string
	Price        shared.Money
	Cost         shared.Money
	Type         catalog.ProductType
	CategoryID   catalog.CategoryID
	BrandID      *catalog.BrandID
	InitialStock int
}

// CreateProduct adds a draft product. SKUs are unique per tenant.
func (s *CatalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*catalog.Product, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CreateProductCommand) (*catalog.Product, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		cost := cmd.Cost
		if cost.Currency() == "" {
			// Unknown cost is recorded as zero in the price currency.
			if cost, err = shared.ZeroMoney(cmd.Price.Currency()); err != nil {
				return nil, err
			}
		}
		p, err := catalog.NewProduct(s.clock, catalog.NewProductParams{
			TenantID:    tenantID,
			Name:        cmd.Name,
			Description: cmd.Description,
			SKU:         cmd.SKU,
			Price:       cmd.Price,
			Cost:        cost,
			Type:        cmd.Type,
			CategoryID:  cmd.CategoryID,
		})
		if err != nil {
			return nil, err
		}

		_, err = s.repos.Products.GetBySKU(ctx, p.SKU())
		switch {
		case err == nil:
			return nil, &shared.DuplicateError{Entity: "product", Field: "sku", Value: p.SKU().String()}
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("checking sku: %w", err)
		}
		if _, err := s.repos.Categories.GetByID(ctx, cmd.CategoryID); err != nil {
			return nil, err
		}
		if cmd.BrandID != nil {
			if _, err := s.repos.Brands.GetByID(ctx, *cmd.BrandID); err != nil {
				return nil, err
			}
			if err := p.SetBrand(*cmd.BrandID); err != nil {
				return nil, err
			}
		}
		if cmd.InitialStock > 0 {
			if err := p.UpdateStock(cmd.InitialStock); err != nil {
				return nil, err
			}
		}

		if err := s.repos.Products.Add(ctx, p); err != nil {
			return nil, fmt.Errorf("adding product: %w", err)
		}
		return p, nil
	})
}

type UpdatePriceCommand struct {
	ProductID catalog.ProductID
	Price     shared.Money
}

func (s *CatalogService) UpdatePrice(ctx context.Context, cmd UpdatePriceCommand) (*catalog.Product, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd UpdatePriceCommand) (*catalog.Product, error) {
		return s.mutateProduct(ctx, cmd.ProductID, func(p *catalog.Product) error { return p.UpdatePrice(cmd.Price) })
	})
}

// AdjustStockCommand changes stock by Delta units, which may be negative.
type AdjustStockCommand struct {
	ProductID catalog.ProductID
	Delta     int
}

func (s *CatalogService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*catalog.Product, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AdjustStockCommand) (*catalog.Product, error) {
		return s.mutateProduct(ctx, cmd.ProductID, func(p *catalog.Product) error {
			switch {
			case cmd.Delta > 0:
				return p.IncreaseStock(cmd.Delta)
			case cmd.Delta < 0:
				return p.ReduceStock(-cmd.Delta)
			}
			return &shared.ValidationError{Field: "delta", Reason: "must not be zero"}
		})
	})
}

type ProductStatusCommand struct {
	ProductID catalog.ProductID
	Event     catalog.ProductEvent
}

// ChangeStatus activates, deactivates or discontinues a product. Stock
// driven transitions are not accepted here.
func (s *CatalogService) ChangeStatus(ctx context.Context, cmd ProductStatusCommand) (*catalog.Product, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ProductStatusCommand) (*catalog.Product, error) {
		return s.mutateProduct(ctx, cmd.ProductID, func(p *catalog.Product) error {
			switch cmd.Event {
			case catalog.EventActivate:
				return p.Activate()
			case catalog.EventDeactivate:
				return p.Deactivate()
			case catalog.EventDiscontinue:
				return p.Discontinue()
			}
			return &shared.ValidationError{Field: "event", Reason: fmt.Sprintf("unsupported event %q", cmd.Event)}
		})
	})
}

func (s *CatalogService) Activate(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	return s.ChangeStatus(ctx, ProductStatusCommand{ProductID: id, Event: catalog.EventActivate})
}

func (s *CatalogService) Deactivate(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	return s.ChangeStatus(ctx, ProductStatusCommand{ProductID: id, Event: catalog.EventDeactivate})
}

func (s *CatalogService) Discontinue(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	return s.ChangeStatus(ctx, ProductStatusCommand{ProductID: id, Event: catalog.EventDiscontinue})
}

type DeleteProductCommand struct{ ProductID catalog.ProductID }

// DeleteProduct soft deletes a product. It stays readable with IncludeDeleted.
func (s *CatalogService) DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error {
	_, err := uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd DeleteProductCommand) (struct{}, error) {
		p, err := s.repos.Products.GetByID(ctx, cmd.ProductID)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.repos.Products.Remove(ctx, p)
	})
	return err
}

type AddVariantCommand struct {
	ProductID  catalog.ProductID
	Name       string
	SKU        string
	Price      shared.Money
	Stock      int
	Attributes map[string]string
}

func (s *CatalogService) AddVariant(ctx context.Context, cmd AddVariantCommand) (*catalog.ProductVariant, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AddVariantCommand) (*catalog.ProductVariant, error) {
		if _, err := s.repos.Products.GetByID(ctx, cmd.ProductID); err != nil {
			return nil, err
		}
		v, err := catalog.NewProductVariant(cmd.ProductID, cmd.Name, cmd.SKU, cmd.Price)
		if err != nil {
			return nil, err
		}
		existing, err := s.repos.Variants.ListByProduct(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.SKU() == v.SKU() {
				return nil, &shared.DuplicateError{Entity: "variant", Field: "sku", Value: v.SKU().String()}
			}
		}
		if err := v.UpdateStock(cmd.Stock); err != nil {
			return nil, err
		}
		for k, val := range cmd.Attributes {
			if err := v.SetAttribute(k, val); err != nil {
				return nil, err
			}
		}
		if err := v.SetDisplayOrder(len(existing)); err != nil {
			return nil, err
		}
		if err := s.repos.Variants.Add(ctx, v); err != nil {
			return nil, fmt.Errorf("adding variant: %w", err)
		}
		return v, nil
	})
}

type AddImageCommand struct {
	ProductID catalog.ProductID
	URL       string
	AltText   string
	Primary   bool
}

// AddImage attaches an image. The first image, or one marked Primary, becomes
// the only primary image of the product.
func (s *CatalogService) AddImage(ctx context.Context, cmd AddImageCommand) (*catalog.ProductImage, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AddImageCommand) (*catalog.ProductImage, error) {
		if _, err := s.repos.Products.GetByID(ctx, cmd.ProductID); err != nil {
			return nil, err
		}
		existing, err := s.repos.Images.ListByProduct(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		primary := cmd.Primary || len(existing) == 0
		img, err := catalog.NewProductImage(cmd.ProductID, cmd.URL, cmd.AltText, len(existing), primary)
		if err != nil {
			return nil, err
		}
		if primary {
			for _, other := range existing {
				if !other.IsPrimary() {
					continue
				}
				other.SetPrimary(false)
				if err := s.repos.Images.Update(ctx, other); err != nil {
					return nil, err
				}
			}
		}
		if err := s.repos.Images.Add(ctx, img); err != nil {
			return nil, fmt.Errorf("adding image: %w", err)
		}
		return img, nil
	})
}

type CreateCategoryCommand struct {
	Name        string
	Slug        string
	Description string
	ParentID    *catalog.CategoryID
}

func (s *CatalogService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (*catalog.Category, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CreateCategoryCommand) (*catalog.Category, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		c, err := catalog.NewCategory(tenantID, cmd.Name, cmd.Slug, cmd.Description)
		if err != nil {
			return nil, err
		}
		if err := ensureSlugFree(ctx, "category", c.Slug(), s.repos.Categories.GetBySlug); err != nil {
			return nil, err
		}
		if cmd.ParentID != nil {
			if _, err := s.repos.Categories.GetByID(ctx, *cmd.ParentID); err != nil {
				return nil, err
			}
			if err := c.SetParent(*cmd.ParentID); err != nil {
				return nil, err
			}
		}
		if err := s.repos.Categories.Add(ctx, c); err != nil {
			return nil, fmt.Errorf("adding category: %w", err)
		}
		return c, nil
	})
}

type CreateBrandCommand struct {
	Name        string
	Slug        string
	Description string
	Website     string
}

func (s *CatalogService) CreateBrand(ctx context.Context, cmd CreateBrandCommand) (*catalog.Brand, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CreateBrandCommand) (*catalog.Brand, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		b, err := catalog.NewBrand(tenantID, cmd.Name, cmd.Slug, cmd.Description)
		if err != nil {
			return nil, err
		}
		if err := b.SetWebsite(cmd.Website); err != nil {
			return nil, err
		}
		if err := ensureSlugFree(ctx, "brand", b.Slug(), s.repos.Brands.GetBySlug); err != nil {
			return nil, err
		}
		if err := s.repos.Brands.Add(ctx, b); err != nil {
			return nil, fmt.Errorf("adding brand: %w", err)
		}
		return b, nil
	})
}

type GetProductQuery struct{ ProductID catalog.ProductID }

func (s *CatalogService) GetProduct(ctx context.Context, q GetProductQuery) (*catalog.Product, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetProductQuery) (*catalog.Product, error) {
		return s.repos.Products.GetByID(ctx, q.ProductID)
	})
}

type ListProductsQuery struct {
	Status     *catalog.ProductStatus
	CategoryID *catalog.CategoryID
	Limit      int
	Offset     int
}

func (s *CatalogService) ListProducts(ctx context.Context, q ListProductsQuery) ([]*catalog.Product, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q ListProductsQuery) ([]*catalog.Product, error) {
		query := shared.Query{}.Sorted("name", false).Page(q.Limit, q.Offset)
		if q.Status != nil {
			query.Where = append(query.Where, shared.Eq("status", string(*q.Status)))
		}
		if q.CategoryID != nil {
			query.Where = append(query.Where, shared.Eq("category_id", q.CategoryID.String()))
		}
		return s.repos.Products.Find(ctx, query)
	})
}

func (s *CatalogService) mutateProduct(ctx context.Context, id catalog.ProductID, fn func(*catalog.Product) error) (*catalog.Product, error) {
	p, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.repos.Products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	return p, nil
}

func ensureSlugFree[A any](ctx context.Context, entity string, slug shared.Slug, lookup func(context.Context, shared.Slug) (A, error)) error {
	_, err := lookup(ctx, slug)
	switch {
	case err == nil:
		return &shared.DuplicateError{Entity: entity, Field: "slug", Value: slug.String()}
	case errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("checking slug: %w", err)
	}
}
