package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// WishlistService keeps the saved-for-later lists of registered customers.
type WishlistService struct {
	pipeline  *uow.Pipeline
	wishlists shopping.WishlistRepository
	customers customer.Repository
	products  catalog.ProductRepository
	variants  catalog.VariantRepository
	clock     shared.Clock
}

func NewWishlistService(pipeline *uow.Pipeline, wishlists shopping.WishlistRepository, customers customer.Repository, products catalog.ProductRepository, variants catalog.VariantRepository, clock shared.Clock) *WishlistService {
	return &WishlistService{
		pipeline:  pipeline,
		wishlists: wishlists,
		customers: customers,
		products:  products,
		variants:  variants,
		clock:     shared.ClockOrSystem(clock),
	}
}

type CreateWishlistCommand struct {
	CustomerID customer.CustomerID
	Name       string
	Public     bool
}

func (s *WishlistService) Create(ctx context.Context, cmd CreateWishlistCommand) (*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CreateWishlistCommand) (*shopping.Wishlist, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := s.customers.GetByID(ctx, cmd.CustomerID); err != nil {
			return nil, err
		}
		w, err := shopping.NewWishlist(s.clock, tenantID, cmd.CustomerID, cmd.Name, cmd.Public)
		if err != nil {
			return nil, err
		}
		if err := s.wishlists.Add(ctx, w); err != nil {
			return nil, fmt.Errorf("adding wishlist: %w", err)
		}
		return w, nil
	})
}

type AddWishlistItemCommand struct {
	WishlistID shopping.WishlistID
	ProductID  catalog.ProductID
	VariantID  *catalog.VariantID
}

// AddItem saves a product. Unlike carts, drafts and sold-out products may be
// saved; discontinued ones may not.
func (s *WishlistService) AddItem(ctx context.Context, cmd AddWishlistItemCommand) (*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AddWishlistItemCommand) (*shopping.Wishlist, error) {
		p, err := s.products.GetByID(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Status() == catalog.StatusDiscontinued {
			return nil, &shared.StateError{Entity: "product", Action: "save to wishlist", Reason: "product is discontinued"}
		}
		if cmd.VariantID != nil {
			v, err := s.variants.GetByID(ctx, *cmd.VariantID)
			if err != nil {
				return nil, err
			}
			if v.ProductID() != p.ID() {
				return nil, &shared.NotFoundError{Entity: "variant", ID: cmd.VariantID.String()}
			}
		}
		return s.mutate(ctx, cmd.WishlistID, func(w *shopping.Wishlist) error {
			_, err := w.AddItem(p.ID(), cmd.VariantID)
			return err
		})
	})
}

type RemoveWishlistItemCommand struct {
	WishlistID shopping.WishlistID
	ItemID     shopping.WishlistItemID
}

func (s *WishlistService) RemoveItem(ctx context.Context, cmd RemoveWishlistItemCommand) (*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd RemoveWishlistItemCommand) (*shopping.Wishlist, error) {
		return s.mutate(ctx, cmd.WishlistID, func(w *shopping.Wishlist) error { return w.RemoveItem(cmd.ItemID) })
	})
}

type UpdateWishlistCommand struct {
	WishlistID shopping.WishlistID
	Name       string
	Public     bool
}

func (s *WishlistService) Update(ctx context.Context, cmd UpdateWishlistCommand) (*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd UpdateWishlistCommand) (*shopping.Wishlist, error) {
		return s.mutate(ctx, cmd.WishlistID, func(w *shopping.Wishlist) error {
			w.Rename(cmd.Name)
			if cmd.Public {
				w.MakePublic()
			} else {
				w.MakePrivate()
			}
			return nil
		})
	})
}

type ClearWishlistCommand struct{ WishlistID shopping.WishlistID }

func (s *WishlistService) Clear(ctx context.Context, cmd ClearWishlistCommand) (*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ClearWishlistCommand) (*shopping.Wishlist, error) {
		return s.mutate(ctx, cmd.WishlistID, func(w *shopping.Wishlist) error {
			w.Clear()
			return nil
		})
	})
}

type DeleteWishlistCommand struct{ WishlistID shopping.WishlistID }

func (s *WishlistService) Delete(ctx context.Context, cmd DeleteWishlistCommand) error {
	_, err := uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd DeleteWishlistCommand) (struct{}, error) {
		w, err := s.wishlists.GetByID(ctx, cmd.WishlistID)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.wishlists.Remove(ctx, w)
	})
	return err
}

type GetWishlistQuery struct{ WishlistID shopping.WishlistID }

func (s *WishlistService) GetWishlist(ctx context.Context, q GetWishlistQuery) (*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetWishlistQuery) (*shopping.Wishlist, error) {
		return s.wishlists.GetByID(ctx, q.WishlistID)
	})
}

type ListWishlistsQuery struct{ CustomerID customer.CustomerID }

func (s *WishlistService) ListWishlists(ctx context.Context, q ListWishlistsQuery) ([]*shopping.Wishlist, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q ListWishlistsQuery) ([]*shopping.Wishlist, error) {
		return s.wishlists.Find(ctx, shared.Where(shared.Eq("customer_id", q.CustomerID.String())).Sorted("created_at", false))
	})
}

func (s *WishlistService) mutate(ctx context.Context, id shopping.WishlistID, fn func(*shopping.Wishlist) error) (*shopping.Wishlist, error) {
	w, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.wishlists.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("updating wishlist: %w", err)
	}
	return w, nil
}
