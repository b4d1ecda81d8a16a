package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
)

type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SKU           string    `json:"sku"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	StockStatus   string    `json:"stock_status"`
	Price         MoneyBody `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CategoryID    string    `json:"category_id"`
	BrandID       string    `json:"brand_id,omitempty"`
	Featured      bool      `json:"featured"`
	Version       int       `json:"version"`
	CreatedAt     string    `json:"created_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID().String(),
		Name:          p.Name(),
		Description:   p.Description(),
		SKU:           p.SKU().String(),
		Type:          string(p.Type()),
		Status:        string(p.Status()),
		StockStatus:   string(p.StockStatus()),
		Price:         toMoneyBody(p.Price()),
		StockQuantity: p.StockQuantity(),
		CategoryID:    p.CategoryID().String(),
		Featured:      p.IsFeatured(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt().Format(timeLayout),
	}
	if id, ok := p.BrandID(); ok {
		resp.BrandID = id.String()
	}
	return resp
}

type TaxonomyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

type VariantResponse struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"product_id"`
	Name       string            `json:"name"`
	SKU        string            `json:"sku"`
	Price      MoneyBody         `json:"price"`
	Stock      int               `json:"stock"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Active     bool              `json:"active"`
}

type ImageResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	URL          string `json:"url"`
	AltText      string `json:"alt_text,omitempty"`
	DisplayOrder int    `json:"display_order"`
	Primary      bool   `json:"primary"`
}

type CreateTaxonomyInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"200"`
		Slug        string `json:"slug" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$"`
		Description string `json:"description,omitempty" required:"false"`
		ParentID    string `json:"parent_id,omitempty" required:"false" doc:"Parent category (categories only)"`
		Website     string `json:"website,omitempty" required:"false" doc:"Brand website (brands only)"`
	}
}

type TaxonomyOutput struct {
	Body TaxonomyResponse
}

type CreateProductInput struct {
	Body struct {
		Name         string     `json:"name" minLength:"1"`
		Description  string     `json:"description" minLength:"1"`
		SKU          string     `json:"sku" minLength:"1"`
		Type         string     `json:"type,omitempty" default:"physical" enum:"physical,digital,service,food,prescription"`
		Price        MoneyBody  `json:"price"`
		Cost         *MoneyBody `json:"cost,omitempty" required:"false"`
		CategoryID   string     `json:"category_id"`
		BrandID      string     `json:"brand_id,omitempty" required:"false"`
		InitialStock int        `json:"initial_stock,omitempty" minimum:"0" required:"false"`
	}
}

type ProductOutput struct {
	Body ProductResponse
}

type ProductIDInput struct {
	ID string `path:"id" doc:"Product ID"`
}

type ListProductsInput struct {
	Status     string `query:"status" required:"false" enum:"draft,active,inactive,out_of_stock,discontinued"`
	CategoryID string `query:"category_id" required:"false"`
	Limit      int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"200"`
	Offset     int    `query:"offset" required:"false" default:"0" minimum:"0"`
}

type ListProductsOutput struct {
	Body []ProductResponse
}

type UpdatePriceInput struct {
	ID   string `path:"id"`
	Body struct {
		Price MoneyBody `json:"price"`
	}
}

type AdjustStockInput struct {
	ID   string `path:"id"`
	Body struct {
		Delta int `json:"delta" doc:"Units to add (positive) or remove (negative)"`
	}
}

type ProductEventInput struct {
	ID   string `path:"id"`
	Body struct {
		Event string `json:"event" enum:"activate,deactivate,discontinue"`
	}
}

type AddVariantInput struct {
	ID   string `path:"id"`
	Body struct {
		Name       string            `json:"name" minLength:"1"`
		SKU        string            `json:"sku" minLength:"1"`
		Price      MoneyBody         `json:"price"`
		Stock      int               `json:"stock,omitempty" minimum:"0" required:"false"`
		Attributes map[string]string `json:"attributes,omitempty" required:"false"`
	}
}

type VariantOutput struct {
	Body VariantResponse
}

type AddImageInput struct {
	ID   string `path:"id"`
	Body struct {
		URL     string `json:"url" format:"uri"`
		AltText string `json:"alt_text,omitempty" required:"false"`
		Primary bool   `json:"primary,omitempty" required:"false"`
	}
}

type ImageOutput struct {
	Body ImageResponse
}

func registerCatalog(api huma.API, svc *app.CatalogService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create a category",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTaxonomyInput) (*TaxonomyOutput, error) {
		cmd := app.CreateCategoryCommand{Name: input.Body.Name, Slug: input.Body.Slug, Description: input.Body.Description}
		if input.Body.ParentID != "" {
			id, err := parseID[catalog.CategoryRef]("parent_id", input.Body.ParentID)
			if err != nil {
				return nil, err
			}
			cmd.ParentID = &id
		}
		c, err := svc.CreateCategory(ctx, cmd)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TaxonomyOutput{Body: TaxonomyResponse{
			ID: c.ID().String(), Name: c.Name(), Slug: c.Slug().String(), Description: c.Description(), Active: c.IsActive(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-brand",
		Method:        http.MethodPost,
		Path:          "/api/v1/brands",
		Summary:       "Create a brand",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTaxonomyInput) (*TaxonomyOutput, error) {
		b, err := svc.CreateBrand(ctx, app.CreateBrandCommand{
			Name: input.Body.Name, Slug: input.Body.Slug, Description: input.Body.Description, Website: input.Body.Website,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TaxonomyOutput{Body: TaxonomyResponse{
			ID: b.ID().String(), Name: b.Name(), Slug: b.Slug().String(), Description: b.Description(), Active: b.IsActive(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-product",
		Method:        http.MethodPost,
		Path:          "/api/v1/products",
		Summary:       "Create a draft product",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
		price, err := input.Body.Price.money()
		if err != nil {
			return nil, err
		}
		categoryID, err := parseID[catalog.CategoryRef]("category_id", input.Body.CategoryID)
		if err != nil {
			return nil, err
		}
		cmd := app.CreateProductCommand{
			Name:         input.Body.Name,
			Description:  input.Body.Description,
			SKU:          input.Body.SKU,
			Price:        price,
			Type:         catalog.ProductType(input.Body.Type),
			CategoryID:   categoryID,
			InitialStock: input.Body.InitialStock,
		}
		if input.Body.Cost != nil {
			if cmd.Cost, err = input.Body.Cost.money(); err != nil {
				return nil, err
			}
		}
		if input.Body.BrandID != "" {
			brandID, err := parseID[catalog.Brand]("brand_id", input.Body.BrandID)
			if err != nil {
				return nil, err
			}
			cmd.BrandID = &brandID
		}
		p, err := svc.CreateProduct(ctx, cmd)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get a product",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *ProductIDInput) (*ProductOutput, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		p, err := svc.GetProduct(ctx, app.GetProductQuery{ProductID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
		q := app.ListProductsQuery{Limit: input.Limit, Offset: input.Offset}
		if input.Status != "" {
			s := catalog.ProductStatus(input.Status)
			q.Status = &s
		}
		if input.CategoryID != "" {
			id, err := parseID[catalog.CategoryRef]("category_id", input.CategoryID)
			if err != nil {
				return nil, err
			}
			q.CategoryID = &id
		}
		products, err := svc.ListProducts(ctx, q)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ProductResponse, len(products))
		for i, p := range products {
			resp[i] = toProductResponse(p)
		}
		return &ListProductsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-product-price",
		Method:      http.MethodPut,
		Path:        "/api/v1/products/{id}/price",
		Summary:     "Change the price of a product",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *UpdatePriceInput) (*ProductOutput, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		price, err := input.Body.Price.money()
		if err != nil {
			return nil, err
		}
		p, err := svc.UpdatePrice(ctx, app.UpdatePriceCommand{ProductID: id, Price: price})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "adjust-product-stock",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/stock",
		Summary:     "Add or remove stock",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *AdjustStockInput) (*ProductOutput, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		p, err := svc.AdjustStock(ctx, app.AdjustStockCommand{ProductID: id, Delta: input.Body.Delta})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-product",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/events",
		Summary:     "Activate, deactivate or discontinue a product",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *ProductEventInput) (*ProductOutput, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		p, err := svc.ChangeStatus(ctx, app.ProductStatusCommand{ProductID: id, Event: catalog.ProductEvent(input.Body.Event)})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-product",
		Method:        http.MethodDelete,
		Path:          "/api/v1/products/{id}",
		Summary:       "Soft-delete a product",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ProductIDInput) (*struct{}, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteProduct(ctx, app.DeleteProductCommand{ProductID: id}); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-product-variant",
		Method:        http.MethodPost,
		Path:          "/api/v1/products/{id}/variants",
		Summary:       "Add a variant",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *AddVariantInput) (*VariantOutput, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		price, err := input.Body.Price.money()
		if err != nil {
			return nil, err
		}
		v, err := svc.AddVariant(ctx, app.AddVariantCommand{
			ProductID:  id,
			Name:       input.Body.Name,
			SKU:        input.Body.SKU,
			Price:      price,
			Stock:      input.Body.Stock,
			Attributes: input.Body.Attributes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &VariantOutput{Body: VariantResponse{
			ID:         v.ID().String(),
			ProductID:  v.ProductID().String(),
			Name:       v.Name(),
			SKU:        v.SKU().String(),
			Price:      toMoneyBody(v.Price()),
			Stock:      v.StockQuantity(),
			Attributes: v.Attributes(),
			Active:     v.IsActive(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-product-image",
		Method:        http.MethodPost,
		Path:          "/api/v1/products/{id}/images",
		Summary:       "Attach an image",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *AddImageInput) (*ImageOutput, error) {
		id, err := parseID[catalog.Product]("id", input.ID)
		if err != nil {
			return nil, err
		}
		img, err := svc.AddImage(ctx, app.AddImageCommand{
			ProductID: id, URL: input.Body.URL, AltText: input.Body.AltText, Primary: input.Body.Primary,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ImageOutput{Body: ImageResponse{
			ID:           img.ID().String(),
			ProductID:    img.ProductID().String(),
			URL:          img.URL(),
			AltText:      img.AltText(),
			DisplayOrder: img.DisplayOrder(),
			Primary:      img.IsPrimary(),
		}}, nil
	})
}
