package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/ordering"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// OrderRepositories groups the stores an order touches during its life.
type OrderRepositories struct {
	Orders    ordering.Repository
	Carts     shopping.CartRepository
	Customers customer.Repository
	Products  catalog.ProductRepository
	Variants  catalog.VariantRepository
	Tenants   tenant.Repository
}

// OrderService turns carts into orders and drives orders through
// fulfillment.
type OrderService struct {
	pipeline *uow.Pipeline
	repos    OrderRepositories
	clock    shared.Clock
}

func NewOrderService(pipeline *uow.Pipeline, repos OrderRepositories, clock shared.Clock) *OrderService {
	return &OrderService{pipeline: pipeline, repos: repos, clock: shared.ClockOrSystem(clock)}
}

type CheckoutCommand struct {
	CartID       shopping.CartID
	CustomerID   customer.CustomerID
	Fulfillment  ordering.FulfillmentType
	Shipping     *ordering.ShippingInfo
	ShippingCost *shared.Money
	Tax          *shared.Money
	Notes        string
}

// Checkout places an order for the contents of a cart. Stock is reserved,
// the cart is converted and the customer's history updated in the same unit
// of work, so either all of it is stored or none of it is.
func (s *OrderService) Checkout(ctx context.Context, cmd CheckoutCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CheckoutCommand) (*ordering.Order, error) {
		tenantID, err := shared.RequireTenant(ctx)
		if err != nil {
			return nil, err
		}
		cart, err := s.repos.Carts.GetByID(ctx, cmd.CartID)
		if err != nil {
			return nil, err
		}
		if cart.Status() != shopping.CartActive {
			return nil, &shared.StateError{Entity: "cart", Action: "checkout", Reason: "cart is " + string(cart.Status())}
		}
		if cart.IsExpired() {
			return nil, &shared.StateError{Entity: "cart", Action: "checkout", Reason: "cart has expired"}
		}
		if cart.IsEmpty() {
			return nil, &shared.ValidationError{Field: "cart", Reason: "cart is empty"}
		}
		buyer, err := s.repos.Customers.GetByID(ctx, cmd.CustomerID)
		if err != nil {
			return nil, err
		}
		if !buyer.IsActive() {
			return nil, &shared.StateError{Entity: "customer", Action: "checkout", Reason: "customer is " + string(buyer.Status())}
		}

		lines := make([]ordering.OrderLine, 0, cart.ItemCount())
		for _, item := range cart.Items() {
			line, err := s.reserve(ctx, item)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}

		if err := s.checkMinimum(ctx, tenantID, cart.Total()); err != nil {
			return nil, err
		}

		number, err := ordering.NewOrderNumber(s.clock.UtcNow())
		if err != nil {
			return nil, err
		}
		order, err := ordering.PlaceOrder(s.clock, number, ordering.PlaceOrderParams{
			TenantID:      tenantID,
			CustomerID:    buyer.ID(),
			CustomerEmail: buyer.Email().String(),
			Fulfillment:   cmd.Fulfillment,
			Shipping:      cmd.Shipping,
			Items:         lines,
		})
		if err != nil {
			return nil, err
		}
		if cmd.ShippingCost != nil {
			if err := order.SetShippingCost(*cmd.ShippingCost); err != nil {
				return nil, err
			}
		}
		if cmd.Tax != nil {
			if err := order.SetTax(*cmd.Tax); err != nil {
				return nil, err
			}
		}
		if cmd.Notes != "" {
			if err := order.AddNotes(cmd.Notes); err != nil {
				return nil, err
			}
		}
		if err := s.repos.Orders.Add(ctx, order); err != nil {
			return nil, fmt.Errorf("adding order: %w", err)
		}

		if err := cart.AssignToCustomer(buyer.ID(), buyer.Email().String()); err != nil {
			return nil, err
		}
		if err := cart.MarkAsConverted(); err != nil {
			return nil, err
		}
		if err := s.repos.Carts.Update(ctx, cart); err != nil {
			return nil, fmt.Errorf("updating cart: %w", err)
		}
		if err := buyer.RecordOrder(order.Total()); err != nil {
			return nil, err
		}
		if err := s.repos.Customers.Update(ctx, buyer); err != nil {
			return nil, fmt.Errorf("updating customer: %w", err)
		}
		return order, nil
	})
}

// reserve takes the cart line's quantity out of stock and freezes it as an
// order line.
func (s *OrderService) reserve(ctx context.Context, item *shopping.CartItem) (ordering.OrderLine, error) {
	p, err := s.repos.Products.GetByID(ctx, item.ProductID())
	if err != nil {
		return ordering.OrderLine{}, err
	}
	if p.Status() != catalog.StatusActive {
		return ordering.OrderLine{}, &shared.StateError{Entity: "product", Action: "order", Reason: p.Name() + " is " + string(p.Status())}
	}
	line := ordering.OrderLine{
		ProductID:   p.ID(),
		ProductName: item.ProductName(),
		VariantName: item.VariantName(),
		SKU:         p.SKU().String(),
		UnitPrice:   item.UnitPrice(),
		Quantity:    item.Quantity(),
		ImageURL:    item.ImageURL(),
	}

	if variantID, ok := item.VariantID(); ok {
		v, err := s.repos.Variants.GetByID(ctx, variantID)
		if err != nil {
			return ordering.OrderLine{}, err
		}
		if err := v.ReduceStock(item.Quantity()); err != nil {
			return ordering.OrderLine{}, err
		}
		if err := s.repos.Variants.Update(ctx, v); err != nil {
			return ordering.OrderLine{}, fmt.Errorf("updating variant: %w", err)
		}
		line.VariantID = &variantID
		line.SKU = v.SKU().String()
		return line, nil
	}

	if err := p.ReduceStock(item.Quantity()); err != nil {
		return ordering.OrderLine{}, err
	}
	if err := s.repos.Products.Update(ctx, p); err != nil {
		return ordering.OrderLine{}, fmt.Errorf("updating product: %w", err)
	}
	return line, nil
}

// checkMinimum enforces the tenant's minimum order amount. Carts in a
// currency other than the store default are not checked.
func (s *OrderService) checkMinimum(ctx context.Context, tenantID shared.TenantID, subtotal shared.Money) error {
	t, err := s.repos.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	minimum, err := t.Settings().MinimumOrder()
	if err != nil {
		return err
	}
	if !minimum.IsPositive() || minimum.Currency() != subtotal.Currency() {
		return nil
	}
	below, err := subtotal.LessThan(minimum)
	if err != nil {
		return err
	}
	if below {
		return &shared.ValidationError{Field: "total", Reason: "order is below the minimum of " + minimum.String()}
	}
	return nil
}

type ConfirmPaymentCommand struct {
	OrderID       ordering.OrderID
	Method        string
	TransactionID string
}

func (s *OrderService) ConfirmPayment(ctx context.Context, cmd ConfirmPaymentCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ConfirmPaymentCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error {
			return o.ConfirmPayment(cmd.Method, cmd.TransactionID)
		})
	})
}

type StartProcessingCommand struct{ OrderID ordering.OrderID }

func (s *OrderService) StartProcessing(ctx context.Context, cmd StartProcessingCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd StartProcessingCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, (*ordering.Order).MarkAsProcessing)
	})
}

type ShipOrderCommand struct {
	OrderID        ordering.OrderID
	TrackingNumber string
}

func (s *OrderService) Ship(ctx context.Context, cmd ShipOrderCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ShipOrderCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error { return o.MarkAsShipped(cmd.TrackingNumber) })
	})
}

type DeliverOrderCommand struct{ OrderID ordering.OrderID }

func (s *OrderService) Deliver(ctx context.Context, cmd DeliverOrderCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd DeliverOrderCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, (*ordering.Order).MarkAsDelivered)
	})
}

type CancelOrderCommand struct {
	OrderID ordering.OrderID
	Reason  string
}

// Cancel stops an order and puts its items back in stock.
func (s *OrderService) Cancel(ctx context.Context, cmd CancelOrderCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd CancelOrderCommand) (*ordering.Order, error) {
		o, err := s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error { return o.Cancel(cmd.Reason) })
		if err != nil {
			return nil, err
		}
		for _, item := range o.Items() {
			if err := s.restock(ctx, item); err != nil {
				return nil, err
			}
		}
		return o, nil
	})
}

func (s *OrderService) restock(ctx context.Context, item *ordering.OrderItem) error {
	if variantID, ok := item.VariantID(); ok {
		v, err := s.repos.Variants.GetByID(ctx, variantID)
		if err != nil {
			return err
		}
		if err := v.IncreaseStock(item.Quantity()); err != nil {
			return err
		}
		return s.repos.Variants.Update(ctx, v)
	}
	p, err := s.repos.Products.GetByID(ctx, item.ProductID())
	if err != nil {
		return err
	}
	if err := p.IncreaseStock(item.Quantity()); err != nil {
		return err
	}
	return s.repos.Products.Update(ctx, p)
}

type RefundOrderCommand struct {
	OrderID ordering.OrderID
	Reason  string
}

func (s *OrderService) Refund(ctx context.Context, cmd RefundOrderCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd RefundOrderCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error { return o.Refund(cmd.Reason) })
	})
}

type ApplyDiscountCommand struct {
	OrderID ordering.OrderID
	Amount  shared.Money
}

func (s *OrderService) ApplyDiscount(ctx context.Context, cmd ApplyDiscountCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd ApplyDiscountCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error { return o.ApplyDiscount(cmd.Amount) })
	})
}

type SetShippingCostCommand struct {
	OrderID ordering.OrderID
	Amount  shared.Money
}

func (s *OrderService) SetShippingCost(ctx context.Context, cmd SetShippingCostCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd SetShippingCostCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error { return o.SetShippingCost(cmd.Amount) })
	})
}

type SetTaxCommand struct {
	OrderID ordering.OrderID
	Amount  shared.Money
}

func (s *OrderService) SetTax(ctx context.Context, cmd SetTaxCommand) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, cmd, func(ctx context.Context, cmd SetTaxCommand) (*ordering.Order, error) {
		return s.mutate(ctx, cmd.OrderID, func(o *ordering.Order) error { return o.SetTax(cmd.Amount) })
	})
}

type GetOrderQuery struct{ OrderID ordering.OrderID }

func (s *OrderService) GetOrder(ctx context.Context, q GetOrderQuery) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetOrderQuery) (*ordering.Order, error) {
		return s.repos.Orders.GetByID(ctx, q.OrderID)
	})
}

type GetOrderByNumberQuery struct{ Number ordering.OrderNumber }

func (s *OrderService) GetOrderByNumber(ctx context.Context, q GetOrderByNumberQuery) (*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q GetOrderByNumberQuery) (*ordering.Order, error) {
		return s.repos.Orders.GetByNumber(ctx, q.Number)
	})
}

type ListOrdersQuery struct {
	CustomerID *customer.CustomerID
	Status     *ordering.Status
	Limit      int
	Offset     int
}

func (s *OrderService) ListOrders(ctx context.Context, q ListOrdersQuery) ([]*ordering.Order, error) {
	return uow.Run(ctx, s.pipeline, q, func(ctx context.Context, q ListOrdersQuery) ([]*ordering.Order, error) {
		query := shared.Query{}.Sorted("created_at", true).Page(q.Limit, q.Offset)
		if q.CustomerID != nil {
			query.Where = append(query.Where, shared.Eq("customer_id", q.CustomerID.String()))
		}
		if q.Status != nil {
			query.Where = append(query.Where, shared.Eq("status", string(*q.Status)))
		}
		return s.repos.Orders.Find(ctx, query)
	})
}

func (s *OrderService) mutate(ctx context.Context, id ordering.OrderID, fn func(*ordering.Order) error) (*ordering.Order, error) {
	o, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := s.repos.Orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("updating order: %w", err)
	}
	return o, nil
}
