package ordering_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/ordering"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

var clock = shared.FixedClock{At: time.Date(2026, 7, 9, 15, 4, 5, 0, time.UTC)}

func usd(s string) shared.Money { return shared.MustMoney(s, "USD") }

func orderLine(price string, qty int) ordering.OrderLine {
	return ordering.OrderLine{
		ProductID:   shared.NewID[catalog.Product](),
		ProductName: "Notebook",
		SKU:         "NB-01",
		UnitPrice:   usd(price),
		Quantity:    qty,
	}
}

func shippingInfo(t *testing.T) *ordering.ShippingInfo {
	t.Helper()
	addr, err := shared.NewAddress(shared.AddressParams{Street: "Main St 1", City: "Springfield", Country: "US"})
	require.NoError(t, err)
	info, err := ordering.NewShippingInfo("Homer S", "homer@example.com", "5551234567", addr)
	require.NoError(t, err)
	return &info
}

func placeParams(t *testing.T, lines ...ordering.OrderLine) ordering.PlaceOrderParams {
	return ordering.PlaceOrderParams{
		TenantID:      shared.NewID[shared.TenantRef](),
		CustomerID:    shared.NewID[customer.Customer](),
		CustomerEmail: "homer@example.com",
		Fulfillment:   ordering.StandardShipping,
		Shipping:      shippingInfo(t),
		Items:         lines,
	}
}

func place(t *testing.T, lines ...ordering.OrderLine) *ordering.Order {
	t.Helper()
	if len(lines) == 0 {
		lines = []ordering.OrderLine{orderLine("10.00", 1)}
	}
	o, err := ordering.PlaceOrder(clock, "ORD-20260709-ABCDEF123456", placeParams(t, lines...))
	require.NoError(t, err)
	return o
}

func TestPlaceOrder_TotalsScenario(t *testing.T) {
	o := place(t, orderLine("10.00", 3), orderLine("5.00", 1))
	require.NoError(t, o.SetShippingCost(usd("2.00")))
	require.NoError(t, o.SetTax(usd("1.00")))

	assert.Equal(t, "35.00 USD", o.Subtotal().String())
	assert.Equal(t, "38.00 USD", o.Total().String())

	require.NoError(t, o.ApplyDiscount(usd("5.00")))
	assert.Equal(t, "33.00 USD", o.Total().String())
	assert.Equal(t, 4, o.TotalItems())
}

func TestPlaceOrder_EmitsPlacedOnce(t *testing.T) {
	o := place(t)
	events := o.PendingEvents()
	require.Len(t, events, 1)
	placed := events[0].(ordering.OrderPlaced)
	assert.Equal(t, ordering.OrderNumber("ORD-20260709-ABCDEF123456"), placed.Number)
	assert.Equal(t, "10.00 USD", placed.Total.String())
	assert.Equal(t, ordering.StatusPending, o.Status())
	assert.Equal(t, ordering.PaymentPending, o.PaymentStatus())
}

func TestPlaceOrder_Validation(t *testing.T) {
	t.Run("no items", func(t *testing.T) {
		_, err := ordering.PlaceOrder(clock, "ORD-1", placeParams(t))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
	t.Run("shipping required", func(t *testing.T) {
		p := placeParams(t, orderLine("1", 1))
		p.Shipping = nil
		_, err := ordering.PlaceOrder(clock, "ORD-1", p)
		assert.ErrorIs(t, err, shared.ErrValidation)

		p.Fulfillment = ordering.StorePickup
		_, err = ordering.PlaceOrder(clock, "ORD-1", p)
		assert.NoError(t, err)
	})
	t.Run("mixed currencies", func(t *testing.T) {
		eur := orderLine("1", 1)
		eur.UnitPrice = shared.MustMoney("1", "EUR")
		_, err := ordering.PlaceOrder(clock, "ORD-1", placeParams(t, orderLine("1", 1), eur))
		assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)
	})
	t.Run("blank sku", func(t *testing.T) {
		l := orderLine("1", 1)
		l.SKU = " "
		_, err := ordering.PlaceOrder(clock, "ORD-1", placeParams(t, l))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
	t.Run("missing customer", func(t *testing.T) {
		p := placeParams(t, orderLine("1", 1))
		p.CustomerID = customer.CustomerID{}
		_, err := ordering.PlaceOrder(clock, "ORD-1", p)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestOrder_TotalInvariant(t *testing.T) {
	o := place(t, orderLine("12.50", 2), orderLine("3.10", 3))
	steps := []func() error{
		func() error { return o.SetShippingCost(usd("4.99")) },
		func() error { return o.SetTax(usd("2.75")) },
		func() error { return o.ApplyDiscount(usd("10")) },
		func() error { return o.SetShippingCost(usd("0")) },
		func() error { return o.ApplyDiscount(usd("34.30")) },
		func() error { return o.SetTax(usd("0.01")) },
	}
	for _, step := range steps {
		require.NoError(t, step())
		want := o.Subtotal().Amount().
			Add(o.ShippingCost().Amount()).
			Add(o.Tax().Amount()).
			Sub(o.Discount().Amount())
		assert.True(t, want.Equal(o.Total().Amount()), "want %s, got %s", want, o.Total())
	}

	assert.ErrorIs(t, o.ApplyDiscount(usd("34.31")), shared.ErrValidation)
	assert.ErrorIs(t, o.SetTax(shared.MustMoney("1", "EUR")), shared.ErrCurrencyMismatch)
}

func TestOrder_CancelMatrix(t *testing.T) {
	advance := map[ordering.Status]func(*ordering.Order) error{
		ordering.StatusPending: func(*ordering.Order) error { return nil },
		ordering.StatusConfirmed: func(o *ordering.Order) error {
			return o.ConfirmPayment("card", "tx-1")
		},
		ordering.StatusProcessing: func(o *ordering.Order) error {
			if err := o.ConfirmPayment("card", "tx-1"); err != nil {
				return err
			}
			return o.MarkAsProcessing()
		},
		ordering.StatusShipped: func(o *ordering.Order) error {
			if err := o.ConfirmPayment("card", "tx-1"); err != nil {
				return err
			}
			return o.MarkAsShipped("1z999")
		},
	}
	for status, to := range advance {
		t.Run(string(status), func(t *testing.T) {
			o := place(t)
			require.NoError(t, to(o))
			require.Equal(t, status, o.Status())
			assert.True(t, o.CanBeCancelled())
			require.NoError(t, o.Cancel("customer request"))
			assert.Equal(t, ordering.StatusCancelled, o.Status())
			assert.Equal(t, "customer request", o.CancellationReason())
			if status != ordering.StatusPending {
				assert.Equal(t, ordering.PaymentCancelled, o.PaymentStatus())
			}
		})
	}

	t.Run("cancelled", func(t *testing.T) {
		o := place(t)
		require.NoError(t, o.Cancel("dup"))
		assert.False(t, o.CanBeCancelled())
		assert.ErrorIs(t, o.Cancel("again"), shared.ErrStateConflict)
	})
	t.Run("delivered", func(t *testing.T) {
		o := place(t)
		require.NoError(t, o.ConfirmPayment("card", "tx-1"))
		require.NoError(t, o.MarkAsShipped(""))
		require.NoError(t, o.MarkAsDelivered())
		assert.ErrorIs(t, o.Cancel("late"), shared.ErrStateConflict)
		assert.Equal(t, ordering.StatusDelivered, o.Status())
	})
	t.Run("reason required", func(t *testing.T) {
		o := place(t)
		assert.ErrorIs(t, o.Cancel("  "), shared.ErrValidation)
		assert.Equal(t, ordering.StatusPending, o.Status())
	})
}

func TestOrder_HappyPath(t *testing.T) {
	o := place(t)

	assert.ErrorIs(t, o.MarkAsProcessing(), shared.ErrStateConflict)
	require.NoError(t, o.ConfirmPayment(" card ", "tx-9"))
	assert.Equal(t, ordering.PaymentPaid, o.PaymentStatus())
	assert.Equal(t, "card", o.PaymentMethod())
	assert.ErrorIs(t, o.ConfirmPayment("card", "tx-10"), shared.ErrStateConflict)

	require.NoError(t, o.MarkAsProcessing())
	require.NoError(t, o.MarkAsShipped(" 1z999aa "))
	tracking, ok := o.TrackingNumber()
	require.True(t, ok)
	assert.Equal(t, ordering.TrackingNumber("1Z999AA"), tracking)

	require.NoError(t, o.MarkAsDelivered())
	require.NoError(t, o.Refund("damaged"))
	assert.Equal(t, ordering.StatusRefunded, o.Status())
	assert.Equal(t, ordering.PaymentRefunded, o.PaymentStatus())

	var names []string
	for _, e := range o.DrainEvents() {
		names = append(names, e.EventName())
	}
	assert.Equal(t, []string{
		"ordering.order_placed",
		"ordering.order_paid",
		"ordering.order_processing",
		"ordering.order_shipped",
		"ordering.order_delivered",
		"ordering.order_refunded",
	}, names)
}

func TestOrder_DigitalDownloadCannotShip(t *testing.T) {
	p := placeParams(t, orderLine("9.99", 1))
	p.Fulfillment = ordering.DigitalDownload
	p.Shipping = nil
	o, err := ordering.PlaceOrder(clock, "ORD-2", p)
	require.NoError(t, err)
	assert.False(t, o.RequiresShipping())

	require.NoError(t, o.ConfirmPayment("card", "tx"))
	assert.ErrorIs(t, o.MarkAsShipped(""), shared.ErrStateConflict)
	assert.Equal(t, ordering.StatusConfirmed, o.Status())
}

func TestOrder_RefundRequiresDeliveredAndPaid(t *testing.T) {
	o := place(t)
	assert.ErrorIs(t, o.Refund("why"), shared.ErrStateConflict)
	require.NoError(t, o.ConfirmPayment("card", "tx"))
	assert.ErrorIs(t, o.Refund("why"), shared.ErrStateConflict)
}

func TestOrderItem_Discount(t *testing.T) {
	l := orderLine("10", 2)
	d := usd("5")
	l.Discount = &d
	item, err := ordering.NewOrderItem(l)
	require.NoError(t, err)
	assert.Equal(t, "20.00 USD", item.Subtotal().String())
	assert.Equal(t, "15.00 USD", item.Total().String())

	over := usd("21")
	l.Discount = &over
	_, err = ordering.NewOrderItem(l)
	assert.ErrorIs(t, err, shared.ErrValidation)

	l.Discount = nil
	l.Quantity = 0
	_, err = ordering.NewOrderItem(l)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestNewOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-20260709-[0-9A-F]{12}$`)
	seen := make(map[ordering.OrderNumber]bool)
	for range 200 {
		n, err := ordering.NewOrderNumber(clock.UtcNow())
		require.NoError(t, err)
		assert.Regexp(t, pattern, n.String())
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}

	parsed, err := ordering.ParseOrderNumber(" ord-1 ")
	require.NoError(t, err)
	assert.Equal(t, ordering.OrderNumber("ORD-1"), parsed)
	_, err = ordering.ParseOrderNumber("")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOrder_SnapshotRestore(t *testing.T) {
	o := place(t, orderLine("10.00", 3))
	require.NoError(t, o.ApplyDiscount(usd("1")))
	require.NoError(t, o.ConfirmPayment("card", "tx"))

	restored, err := ordering.RestoreOrder(clock, o.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, o.Snapshot(), restored.Snapshot())
	assert.Equal(t, o.Total(), restored.Total())
}
