package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
)

type WishlistResponse struct {
	ID         string                 `json:"id"`
	CustomerID string                 `json:"customer_id"`
	Name       string                 `json:"name"`
	Public     bool                   `json:"public"`
	Items      []WishlistItemResponse `json:"items"`
	Version    int                    `json:"version"`
}

type WishlistItemResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

func toWishlistResponse(w *shopping.Wishlist) WishlistResponse {
	resp := WishlistResponse{
		ID:         w.ID().String(),
		CustomerID: w.CustomerID().String(),
		Name:       w.Name(),
		Public:     w.IsPublic(),
		Items:      []WishlistItemResponse{},
		Version:    w.Version(),
	}
	for _, item := range w.Items() {
		line := WishlistItemResponse{ID: item.ID().String(), ProductID: item.ProductID.String(), AddedAt: item.AddedAt}
		if item.VariantID != nil {
			line.VariantID = item.VariantID.String()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

type CreateWishlistInput struct {
	Body struct {
		CustomerID string `json:"customer_id"`
		Name       string `json:"name,omitempty" required:"false"`
		Public     bool   `json:"public,omitempty" required:"false"`
	}
}

type WishlistOutput struct {
	Body WishlistResponse
}

type WishlistListOutput struct {
	Body []WishlistResponse
}

type WishlistIDInput struct {
	ID string `path:"id" doc:"Wishlist ID"`
}

type ListWishlistsInput struct {
	CustomerID string `query:"customer_id" doc:"Owner of the wishlists"`
}

type AddWishlistItemInput struct {
	ID   string `path:"id"`
	Body struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id,omitempty" required:"false"`
	}
}

type WishlistItemInput struct {
	ID     string `path:"id"`
	ItemID string `path:"item"`
}

type UpdateWishlistInput struct {
	ID   string `path:"id"`
	Body struct {
		Name   string `json:"name"`
		Public bool   `json:"public"`
	}
}

func registerWishlists(api huma.API, svc *app.WishlistService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-wishlist",
		Method:        http.MethodPost,
		Path:          "/api/v1/wishlists",
		Summary:       "Create a wishlist",
		Tags:          []string{"Wishlists"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateWishlistInput) (*WishlistOutput, error) {
		customerID, err := parseID[customer.Customer]("customer_id", input.Body.CustomerID)
		if err != nil {
			return nil, err
		}
		w, err := svc.Create(ctx, app.CreateWishlistCommand{CustomerID: customerID, Name: input.Body.Name, Public: input.Body.Public})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WishlistOutput{Body: toWishlistResponse(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-wishlists",
		Method:      http.MethodGet,
		Path:        "/api/v1/wishlists",
		Summary:     "List the wishlists of a customer",
		Tags:        []string{"Wishlists"},
	}, func(ctx context.Context, input *ListWishlistsInput) (*WishlistListOutput, error) {
		customerID, err := parseID[customer.Customer]("customer_id", input.CustomerID)
		if err != nil {
			return nil, err
		}
		lists, err := svc.ListWishlists(ctx, app.ListWishlistsQuery{CustomerID: customerID})
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &WishlistListOutput{Body: make([]WishlistResponse, 0, len(lists))}
		for _, w := range lists {
			out.Body = append(out.Body, toWishlistResponse(w))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-wishlist",
		Method:      http.MethodGet,
		Path:        "/api/v1/wishlists/{id}",
		Summary:     "Get a wishlist",
		Tags:        []string{"Wishlists"},
	}, func(ctx context.Context, input *WishlistIDInput) (*WishlistOutput, error) {
		id, err := parseID[shopping.Wishlist]("id", input.ID)
		if err != nil {
			return nil, err
		}
		w, err := svc.GetWishlist(ctx, app.GetWishlistQuery{WishlistID: id})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WishlistOutput{Body: toWishlistResponse(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-wishlist",
		Method:      http.MethodPut,
		Path:        "/api/v1/wishlists/{id}",
		Summary:     "Rename a wishlist or change its visibility",
		Tags:        []string{"Wishlists"},
	}, func(ctx context.Context, input *UpdateWishlistInput) (*WishlistOutput, error) {
		id, err := parseID[shopping.Wishlist]("id", input.ID)
		if err != nil {
			return nil, err
		}
		w, err := svc.Update(ctx, app.UpdateWishlistCommand{WishlistID: id, Name: input.Body.Name, Public: input.Body.Public})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WishlistOutput{Body: toWishlistResponse(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-wishlist-item",
		Method:        http.MethodPost,
		Path:          "/api/v1/wishlists/{id}/items",
		Summary:       "Save a product to a wishlist",
		Tags:          []string{"Wishlists"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *AddWishlistItemInput) (*WishlistOutput, error) {
		id, err := parseID[shopping.Wishlist]("id", input.ID)
		if err != nil {
			return nil, err
		}
		productID, err := parseID[catalog.Product]("product_id", input.Body.ProductID)
		if err != nil {
			return nil, err
		}
		cmd := app.AddWishlistItemCommand{WishlistID: id, ProductID: productID}
		if input.Body.VariantID != "" {
			variantID, err := parseID[catalog.ProductVariant]("variant_id", input.Body.VariantID)
			if err != nil {
				return nil, err
			}
			cmd.VariantID = &variantID
		}
		w, err := svc.AddItem(ctx, cmd)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WishlistOutput{Body: toWishlistResponse(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-wishlist-item",
		Method:      http.MethodDelete,
		Path:        "/api/v1/wishlists/{id}/items/{item}",
		Summary:     "Remove a saved product",
		Tags:        []string{"Wishlists"},
	}, func(ctx context.Context, input *WishlistItemInput) (*WishlistOutput, error) {
		id, err := parseID[shopping.Wishlist]("id", input.ID)
		if err != nil {
			return nil, err
		}
		itemID, err := parseID[shopping.WishlistItem]("item", input.ItemID)
		if err != nil {
			return nil, err
		}
		w, err := svc.RemoveItem(ctx, app.RemoveWishlistItemCommand{WishlistID: id, ItemID: itemID})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WishlistOutput{Body: toWishlistResponse(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-wishlist",
		Method:        http.MethodDelete,
		Path:          "/api/v1/wishlists/{id}",
		Summary:       "Delete a wishlist",
		Tags:          []string{"Wishlists"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *WishlistIDInput) (*struct{}, error) {
		id, err := parseID[shopping.Wishlist]("id", input.ID)
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(ctx, app.DeleteWishlistCommand{WishlistID: id}); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})
}
