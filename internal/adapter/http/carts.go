package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
)

type CartResponse struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"session_id"`
	CustomerID string             `json:"customer_id,omitempty"`
	Status     string             `json:"status"`
	ExpiresAt  string             `json:"expires_at"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	Total      MoneyBody          `json:"total"`
	Version    int                `json:"version"`
}

type CartItemResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	VariantID   string    `json:"variant_id,omitempty"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name,omitempty"`
	UnitPrice   MoneyBody `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Subtotal    MoneyBody `json:"subtotal"`
	ImageURL    string    `json:"image_url,omitempty"`
}

func toCartResponse(c *shopping.ShoppingCart) CartResponse {
	resp := CartResponse{
		ID:         c.ID().String(),
		SessionID:  c.SessionID(),
		Status:     string(c.Status()),
		ExpiresAt:  c.ExpiresAt().Format(timeLayout),
		Items:      make([]CartItemResponse, 0, c.ItemCount()),
		TotalItems: c.TotalItems(),
		Total:      toMoneyBody(c.Total()),
		Version:    c.Version(),
	}
	if id, ok := c.CustomerID(); ok {
		resp.CustomerID = id.String()
	}
	for _, item := range c.Items() {
		line := CartItemResponse{
			ID:          item.ID().String(),
			ProductID:   item.ProductID().String(),
			ProductName: item.ProductName(),
			VariantName: item.VariantName(),
			UnitPrice:   toMoneyBody(item.UnitPrice()),
			Quantity:    item.Quantity(),
			Subtotal:    toMoneyBody(item.Subtotal()),
			ImageURL:    item.ImageURL(),
		}
		if id, ok := item.VariantID(); ok {
			line.VariantID = id.String()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

type OpenCartInput struct {
	Body struct {
		SessionID string `json:"session_id" minLength:"1" maxLength:"200"`
	}
}

type CartOutput struct {
	Body CartResponse
}

type CartIDInput struct {
	ID string `path:"id" doc:"Cart ID"`
}

type AddCartItemInput struct {
	ID   string `path:"id"`
	Body struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id,omitempty" required:"false"`
		Quantity  int    `json:"quantity" minimum:"1" maximum:"999"`
	}
}

type CartItemInput struct {
	ID     string `path:"id"`
	ItemID string `path:"item"`
}

type ChangeQuantityInput struct {
	ID     string `path:"id"`
	ItemID string `path:"item"`
	Body   struct {
		Quantity int `json:"quantity" minimum:"1" maximum:"999"`
	}
}

func registerCarts(api huma.API, svc *app.CartService) {
	huma.Register(api, huma.Operation{
		OperationID: "open-cart",
		Method:      http.MethodPost,
		Path:        "/api/v1/carts",
		Summary:     "Open or resume the cart of a session",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *OpenCartInput) (*CartOutput, error) {
		c, err := svc.OpenCart(ctx, app.OpenCartCommand{SessionID: input.Body.SessionID})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-cart",
		Method:      http.MethodGet,
		Path:        "/api/v1/carts/{id}",
		Summary:     "Get a cart",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *CartIDInput) (*CartOutput, error) {
		id, err := parseID[shopping.ShoppingCart]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.GetCart(ctx, app.GetCartQuery{CartID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-cart-item",
		Method:      http.MethodPost,
		Path:        "/api/v1/carts/{id}/items",
		Summary:     "Add a product to the cart",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *AddCartItemInput) (*CartOutput, error) {
		id, err := parseID[shopping.ShoppingCart]("id", input.ID)
		if err != nil {
			return nil, err
		}
		productID, err := parseID[catalog.Product]("product_id", input.Body.ProductID)
		if err != nil {
			return nil, err
		}
		cmd := app.AddCartItemCommand{CartID: id, ProductID: productID, Quantity: input.Body.Quantity}
		if input.Body.VariantID != "" {
			variantID, err := parseID[catalog.ProductVariant]("variant_id", input.Body.VariantID)
			if err != nil {
				return nil, err
			}
			cmd.VariantID = &variantID
		}
		c, err := svc.AddItem(ctx, cmd)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-cart-item-quantity",
		Method:      http.MethodPut,
		Path:        "/api/v1/carts/{id}/items/{item}",
		Summary:     "Change the quantity of a cart line",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *ChangeQuantityInput) (*CartOutput, error) {
		id, err := parseID[shopping.ShoppingCart]("id", input.ID)
		if err != nil {
			return nil, err
		}
		itemID, err := parseID[shopping.CartItem]("item", input.ItemID)
		if err != nil {
			return nil, err
		}
		c, err := svc.ChangeQuantity(ctx, app.ChangeCartQuantityCommand{CartID: id, ItemID: itemID, Quantity: input.Body.Quantity})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-cart-item",
		Method:      http.MethodDelete,
		Path:        "/api/v1/carts/{id}/items/{item}",
		Summary:     "Remove a cart line",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *CartItemInput) (*CartOutput, error) {
		id, err := parseID[shopping.ShoppingCart]("id", input.ID)
		if err != nil {
			return nil, err
		}
		itemID, err := parseID[shopping.CartItem]("item", input.ItemID)
		if err != nil {
			return nil, err
		}
		c, err := svc.RemoveItem(ctx, app.RemoveCartItemCommand{CartID: id, ItemID: itemID})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-cart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/carts/{id}/items",
		Summary:     "Remove every line",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *CartIDInput) (*CartOutput, error) {
		id, err := parseID[shopping.ShoppingCart]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.Clear(ctx, app.ClearCartCommand{CartID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "abandon-cart",
		Method:      http.MethodPost,
		Path:        "/api/v1/carts/{id}/abandon",
		Summary:     "Mark a cart abandoned",
		Tags:        []string{"Carts"},
	}, func(ctx context.Context, input *CartIDInput) (*CartOutput, error) {
		id, err := parseID[shopping.ShoppingCart]("id", input.ID)
		if err != nil {
			return nil, err
		}
		c, err := svc.Abandon(ctx, app.AbandonCartCommand{CartID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CartOutput{Body: toCartResponse(c)}, nil
	})
}
