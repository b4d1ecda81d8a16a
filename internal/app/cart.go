package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// CartService manages shopping carts of anonymous and signed in shoppers.
type CartService struct {
	pipeline *uow.Pipeline
	carts    shopping.CartRepository
	products catalog.ProductRepository
	variants catalog.VariantRepository
	clock    shared.Clock
}

func NewCartService(pipeline *uow.Pipeline, carts shopping.CartRepository, products catalog.ProductRepository, variants catalog.VariantRepository, clock shared.Clock) *CartService {
	return &CartService{
		pipeline: pipeline,
		carts:    carts,
		products: products,
		variants: variants,
		clock:    shared.ClockOrSystem(clock),
	}
}

type OpenCartCommand struct{ SessionID string }

// OpenCart returns the active cart of a session, creating one if needed.
func (s *CartService) OpenCart(ctx context.Context, cmd OpenCartCommand) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd OpenCartCommand) (*shopping.ShoppingCart, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		existing, err := s.carts.GetBySession(ctx, cmd.SessionID)
		if err == nil && existing.Status() == shopping.CartActive && !existing.IsExpired() {
			return existing, nil
		}
		if err != nil && shared.KindOf(err) != shared.KindNotFound {
			return nil, err
		}
		cart, err := shopping.NewCart(s.clock, tenantID, cmd.SessionID)
		if err != nil {
			return nil, err
		}
		if err := s.carts.Add(ctx, cart); err != nil {
			return nil, fmt.Errorf("adding cart: %w", err)
		}
		return cart, nil
	})
}

type AddCartItemCommand struct {
	CartID    shopping.CartID
	ProductID catalog.ProductID
	VariantID *catalog.VariantID
	Quantity  int
}

// AddItem puts a product in the cart at its current price. Products that are
// not active or out of stock are rejected.
func (s *CartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AddCartItemCommand) (*shopping.ShoppingCart, error) {
		cart, err := s.carts.GetByID(ctx, cmd.CartID)
		if err != nil {
			return nil, err
		}
		p, err := s.products.GetByID(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Status() != catalog.StatusActive || !p.IsInStock() {
			return nil, &shared.StateError{Entity: "product", Action: "add to cart", Reason: "product is " + string(p.Status())}
		}

		line := shopping.NewCartLine{
			ProductID:   p.ID(),
			ProductName: p.Name(),
			UnitPrice:   p.Price(),
			Quantity:    cmd.Quantity,
		}
		if cmd.VariantID != nil {
			v, err := s.variants.GetByID(ctx, *cmd.VariantID)
			if err != nil {
				return nil, err
			}
			if v.ProductID() != p.ID() || !v.IsActive() {
				return nil, &shared.NotFoundError{Entity: "variant", ID: cmd.VariantID.String()}
			}
			id := v.ID()
			line.VariantID = &id
			line.VariantName = v.Name()
			line.UnitPrice = v.Price()
			line.ImageURL = v.ImageURL()
		}

		if _, err := cart.AddItem(line); err != nil {
			return nil, err
		}
		return cart, s.carts.Update(ctx, cart)
	})
}

type ChangeCartQuantityCommand struct {
	CartID   shopping.CartID
	ItemID   shopping.CartItemID
	Quantity int
}

func (s *CartService) ChangeQuantity(ctx context.Context, cmd ChangeCartQuantityCommand) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ChangeCartQuantityCommand) (*shopping.ShoppingCart, error) {
		return s.mutate(ctx, cmd.CartID, func(c *shopping.ShoppingCart) error {
			return c.UpdateItemQuantity(cmd.ItemID, cmd.Quantity)
		})
	})
}

type RemoveCartItemCommand struct {
	CartID shopping.CartID
	ItemID shopping.CartItemID
}

func (s *CartService) RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd RemoveCartItemCommand) (*shopping.ShoppingCart, error) {
		return s.mutate(ctx, cmd.CartID, func(c *shopping.ShoppingCart) error { return c.RemoveItem(cmd.ItemID) })
	})
}

type ClearCartCommand struct{ CartID shopping.CartID }

func (s *CartService) Clear(ctx context.Context, cmd ClearCartCommand) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ClearCartCommand) (*shopping.ShoppingCart, error) {
		return s.mutate(ctx, cmd.CartID, func(c *shopping.ShoppingCart) error {
			c.Clear()
			return nil
		})
	})
}

type AbandonCartCommand struct{ CartID shopping.CartID }

func (s *CartService) Abandon(ctx context.Context, cmd AbandonCartCommand) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd AbandonCartCommand) (*shopping.ShoppingCart, error) {
		return s.mutate(ctx, cmd.CartID, (*shopping.ShoppingCart).MarkAsAbandoned)
	})
}

// SweepExpiredCommand expires every active cart of the tenant whose expiry
// is before Now.
type SweepExpiredCommand struct{ Now time.Time }

// SweepExpired returns the number of carts it expired.
func (s *CartService) SweepExpired(ctx context.Context, cmd SweepExpiredCommand) (int, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd SweepExpiredCommand) (int, error) {
		stale, err := s.carts.Find(ctx, shared.Where(
			shared.Eq("status", string(shopping.CartActive)),
			shared.Lt("expires_at", cmd.Now.UTC()),
		))
		if err != nil {
			return 0, err
		}
		for _, c := range stale {
			if err := c.MarkAsExpired(); err != nil {
				return 0, err
			}
			if err := s.carts.Update(ctx, c); err != nil {
				return 0, err
			}
		}
		return len(stale), nil
	})
}

type GetCartQuery struct{ CartID shopping.CartID }

func (s *CartService) GetCart(ctx context.Context, q GetCartQuery) (*shopping.ShoppingCart, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetCartQuery) (*shopping.ShoppingCart, error) {
		return s.carts.GetByID(ctx, q.CartID)
	})
}

func (s *CartService) mutate(ctx context.Context, id shopping.CartID, fn func(*shopping.ShoppingCart) error) (*shopping.ShoppingCart, error) {
	c, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("updating cart: %w", err)
	}
	return c, nil
}

// CartJanitor expires stale carts of every tenant that is still operating.
// Each tenant is swept in its own unit of work.
type CartJanitor struct {
	tenants tenant.Repository
	carts   *CartService
}

func NewCartJanitor(tenants tenant.Repository, carts *CartService) *CartJanitor {
	return &CartJanitor{tenants: tenants, carts: carts}
}

// SweepExpiredCarts returns how many carts were expired. A failing tenant
// does not stop the others.
func (j *CartJanitor) SweepExpiredCarts(ctx context.Context, now time.Time) (int, error) {
	operating, err := j.tenants.Find(ctx, shared.Where(shared.Ne("status", string(tenant.StatusCancelled))))
	if err != nil {
		return 0, fmt.Errorf("listing tenants: %w", err)
	}
	var (
		total int
		errs  []error
	)
	for _, t := range operating {
		n, err := j.carts.SweepExpired(shared.WithTenant(ctx, t.ID()), SweepExpiredCommand{Now: now})
		if err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", t.Slug(), err))
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}
