package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/ordering"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/shopping"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

type storefront struct {
	ctx      context.Context
	tenant   *tenant.Tenant
	product  *catalog.Product
	customer *customer.Customer
	cart     *shopping.ShoppingCart
}

// newStorefront sets up an active tenant with one product in stock and a cart
// holding quantity units of it.
func newStorefront(t *testing.T, e *env, v tenant.Vertical, price string, stock, quantity int) storefront {
	t.Helper()
	ctx, tn := e.tenantCtx(t, "shop", v)
	p := e.activeProduct(t, ctx, "RUN-01", price, stock)
	c := e.customer(t, ctx, "ana@example.com")
	cart, err := e.carts.OpenCart(ctx, app.OpenCartCommand{SessionID: "sess-1"})
	require.NoError(t, err)
	cart, err = e.carts.AddItem(ctx, app.AddCartItemCommand{CartID: cart.ID(), ProductID: p.ID(), Quantity: quantity})
	require.NoError(t, err)
	e.sink.Reset()
	return storefront{ctx: ctx, tenant: tn, product: p, customer: c, cart: cart}
}

func (s storefront) checkout() app.CheckoutCommand {
	return app.CheckoutCommand{CartID: s.cart.ID(), CustomerID: s.customer.ID(), Fulfillment: ordering.StorePickup}
}

func TestOrderService_Checkout(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 2)

	tax := shared.MustMoney("2.00", "USD")
	order, err := e.orders.Checkout(s.ctx, app.CheckoutCommand{
		CartID:      s.cart.ID(),
		CustomerID:  s.customer.ID(),
		Fulfillment: ordering.StorePickup,
		Tax:         &tax,
		Notes:       "gift wrap",
	})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusPending, order.Status())
	assert.Equal(t, ordering.PaymentPending, order.PaymentStatus())
	assert.Equal(t, "20.00", order.Subtotal().Amount().StringFixed(2))
	assert.Equal(t, "22.00", order.Total().Amount().StringFixed(2))
	assert.Equal(t, "ana@example.com", order.CustomerEmail().String())
	assert.NotEmpty(t, order.Number().String())
	require.Len(t, order.Items(), 1)
	assert.Equal(t, "RUN-01", order.Items()[0].SKU())

	names := e.sink.Names()
	assert.Contains(t, names, "ordering.order_placed")
	assert.Contains(t, names, "shopping.cart_converted")
	assert.Contains(t, names, "catalog.product_inventory_updated")

	p, err := e.catalog.GetProduct(s.ctx, app.GetProductQuery{ProductID: s.product.ID()})
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity())

	cart, err := e.carts.GetCart(s.ctx, app.GetCartQuery{CartID: s.cart.ID()})
	require.NoError(t, err)
	assert.Equal(t, shopping.CartConverted, cart.Status())
	owner, ok := cart.CustomerID()
	require.True(t, ok)
	assert.Equal(t, s.customer.ID(), owner)

	buyer, err := e.customers.GetCustomer(s.ctx, app.GetCustomerQuery{CustomerID: s.customer.ID()})
	require.NoError(t, err)
	assert.Equal(t, 1, buyer.TotalOrders())
	spent, ok := buyer.TotalSpent()
	require.True(t, ok)
	assert.Equal(t, "22.00", spent.Amount().StringFixed(2))

	byNumber, err := e.orders.GetOrderByNumber(s.ctx, app.GetOrderByNumberQuery{Number: order.Number()})
	require.NoError(t, err)
	assert.Equal(t, order.ID(), byNumber.ID())

	_, err = e.orders.Checkout(s.ctx, s.checkout())
	assert.ErrorIs(t, err, shared.ErrStateConflict, "a converted cart cannot be checked out again")
}

func TestOrderService_Checkout_LastUnitsMarksOutOfStock(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 2, 2)

	_, err := e.orders.Checkout(s.ctx, s.checkout())
	require.NoError(t, err)

	p, err := e.catalog.GetProduct(s.ctx, app.GetProductQuery{ProductID: s.product.ID()})
	require.NoError(t, err)
	assert.Zero(t, p.StockQuantity())
	assert.Equal(t, catalog.StatusOutOfStock, p.Status())
}

func TestOrderService_Checkout_InsufficientStockRollsBack(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 4)
	_, err := e.catalog.AdjustStock(s.ctx, app.AdjustStockCommand{ProductID: s.product.ID(), Delta: -3})
	require.NoError(t, err)
	e.sink.Reset()

	_, err = e.orders.Checkout(s.ctx, s.checkout())
	require.ErrorIs(t, err, shared.ErrInsufficient)
	assert.Empty(t, e.sink.Names())

	p, err := e.catalog.GetProduct(s.ctx, app.GetProductQuery{ProductID: s.product.ID()})
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity())

	cart, err := e.carts.GetCart(s.ctx, app.GetCartQuery{CartID: s.cart.ID()})
	require.NoError(t, err)
	assert.Equal(t, shopping.CartActive, cart.Status())

	orders, err := e.orders.ListOrders(s.ctx, app.ListOrdersQuery{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_Checkout_MinimumOrder(t *testing.T) {
	e := newEnv(t)
	// Food stores default to a minimum order of 10.
	s := newStorefront(t, e, tenant.VerticalFood, "4.00", 5, 2)

	_, err := e.orders.Checkout(s.ctx, s.checkout())
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = e.carts.AddItem(s.ctx, app.AddCartItemCommand{CartID: s.cart.ID(), ProductID: s.product.ID(), Quantity: 1})
	require.NoError(t, err)
	order, err := e.orders.Checkout(s.ctx, s.checkout())
	require.NoError(t, err)
	assert.Equal(t, "12.00", order.Total().Amount().StringFixed(2))
}

func TestOrderService_Checkout_MinimumIgnoresOtherCurrencies(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "4.00", 5, 1)

	settings := s.tenant.Settings()
	settings.MinimumOrderAmount = decimal.NewFromInt(50)
	settings.DefaultCurrency = "EUR"
	_, err := e.tenants.UpdateSettings(s.ctx, app.UpdateSettingsCommand{ID: s.tenant.ID(), Settings: settings})
	require.NoError(t, err)

	_, err = e.orders.Checkout(s.ctx, s.checkout())
	assert.NoError(t, err)
}

func TestOrderService_Checkout_Rejections(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 1)

	_, err := e.orders.Checkout(s.ctx, app.CheckoutCommand{CartID: s.cart.ID(), CustomerID: s.customer.ID(), Fulfillment: ordering.StandardShipping})
	assert.ErrorIs(t, err, shared.ErrValidation, "shipping fulfillment needs an address")

	_, err = e.customers.Block(s.ctx, app.BlockCustomerCommand{CustomerID: s.customer.ID(), Reason: "fraud"})
	require.NoError(t, err)
	_, err = e.orders.Checkout(s.ctx, s.checkout())
	assert.ErrorIs(t, err, shared.ErrStateConflict)

	empty, err := e.carts.OpenCart(s.ctx, app.OpenCartCommand{SessionID: "sess-empty"})
	require.NoError(t, err)
	_, err = e.orders.Checkout(s.ctx, app.CheckoutCommand{CartID: empty.ID(), CustomerID: s.customer.ID(), Fulfillment: ordering.StorePickup})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOrderService_Checkout_RejectsExpiredCart(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 2)

	later := e.ordersAt(s.cart.ExpiresAt().Add(time.Minute))
	_, err := later.Checkout(s.ctx, s.checkout())
	require.ErrorIs(t, err, shared.ErrStateConflict)
	assert.Contains(t, err.Error(), "expired")
	assert.NotContains(t, e.sink.Names(), "ordering.order_placed")

	p, err := e.catalog.GetProduct(s.ctx, app.GetProductQuery{ProductID: s.product.ID()})
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity(), "no stock is reserved for an expired cart")

	cart, err := e.repos.Carts.GetByID(s.ctx, s.cart.ID())
	require.NoError(t, err)
	assert.Equal(t, shopping.CartActive, cart.Status())
}

func TestOrderService_CancelRestocks(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 2)
	order, err := e.orders.Checkout(s.ctx, s.checkout())
	require.NoError(t, err)
	e.sink.Reset()

	_, err = e.orders.Cancel(s.ctx, app.CancelOrderCommand{OrderID: order.ID()})
	assert.ErrorIs(t, err, shared.ErrValidation, "a reason is required")

	order, err = e.orders.Cancel(s.ctx, app.CancelOrderCommand{OrderID: order.ID(), Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusCancelled, order.Status())
	assert.Contains(t, e.sink.Names(), "ordering.order_cancelled")

	p, err := e.catalog.GetProduct(s.ctx, app.GetProductQuery{ProductID: s.product.ID()})
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity())

	_, err = e.orders.Cancel(s.ctx, app.CancelOrderCommand{OrderID: order.ID(), Reason: "again"})
	assert.ErrorIs(t, err, shared.ErrStateConflict)
}

func TestOrderService_Fulfillment(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 1)
	order, err := e.orders.Checkout(s.ctx, s.checkout())
	require.NoError(t, err)
	id := order.ID()

	_, err = e.orders.Refund(s.ctx, app.RefundOrderCommand{OrderID: id, Reason: "early"})
	assert.ErrorIs(t, err, shared.ErrStateConflict)

	order, err = e.orders.ConfirmPayment(s.ctx, app.ConfirmPaymentCommand{OrderID: id, Method: "card", TransactionID: "tx-1"})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusConfirmed, order.Status())
	assert.Equal(t, ordering.PaymentPaid, order.PaymentStatus())

	_, err = e.orders.StartProcessing(s.ctx, app.StartProcessingCommand{OrderID: id})
	require.NoError(t, err)
	order, err = e.orders.Ship(s.ctx, app.ShipOrderCommand{OrderID: id, TrackingNumber: "1z999"})
	require.NoError(t, err)
	tracking, ok := order.TrackingNumber()
	require.True(t, ok)
	assert.Equal(t, "1Z999", tracking.String())

	_, err = e.orders.Deliver(s.ctx, app.DeliverOrderCommand{OrderID: id})
	require.NoError(t, err)
	order, err = e.orders.Refund(s.ctx, app.RefundOrderCommand{OrderID: id, Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusRefunded, order.Status())
	assert.Equal(t, ordering.PaymentRefunded, order.PaymentStatus())

	got, err := e.orders.GetOrder(s.ctx, app.GetOrderQuery{OrderID: id})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusRefunded, got.Status())
}

func TestOrderService_Adjustments(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 3)
	order, err := e.orders.Checkout(s.ctx, s.checkout())
	require.NoError(t, err)

	order, err = e.orders.ApplyDiscount(s.ctx, app.ApplyDiscountCommand{OrderID: order.ID(), Amount: shared.MustMoney("5.00", "USD")})
	require.NoError(t, err)
	order, err = e.orders.SetShippingCost(s.ctx, app.SetShippingCostCommand{OrderID: order.ID(), Amount: shared.MustMoney("3.00", "USD")})
	require.NoError(t, err)
	order, err = e.orders.SetTax(s.ctx, app.SetTaxCommand{OrderID: order.ID(), Amount: shared.MustMoney("1.50", "USD")})
	require.NoError(t, err)
	assert.Equal(t, "29.50", order.Total().Amount().StringFixed(2))

	_, err = e.orders.ApplyDiscount(s.ctx, app.ApplyDiscountCommand{OrderID: order.ID(), Amount: shared.MustMoney("5.00", "EUR")})
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)
}

func TestOrderService_ListOrders(t *testing.T) {
	e := newEnv(t)
	s := newStorefront(t, e, tenant.VerticalRetail, "10.00", 5, 1)
	_, err := e.orders.Checkout(s.ctx, s.checkout())
	require.NoError(t, err)

	id := s.customer.ID()
	mine, err := e.orders.ListOrders(s.ctx, app.ListOrdersQuery{CustomerID: &id})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	stranger := shared.NewID[customer.Customer]()
	none, err := e.orders.ListOrders(s.ctx, app.ListOrdersQuery{CustomerID: &stranger})
	require.NoError(t, err)
	assert.Empty(t, none)

	pending := ordering.StatusPending
	byStatus, err := e.orders.ListOrders(s.ctx, app.ListOrdersQuery{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)
}
