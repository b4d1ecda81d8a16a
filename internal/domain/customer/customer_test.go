package customer_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

var clock = shared.FixedClock{At: time.Date(2026, 2, 2, 9, 30, 0, 0, time.UTC)}

func register(t *testing.T) *customer.Customer {
	t.Helper()
	c, err := customer.RegisterCustomer(clock, shared.NewID[shared.TenantRef](), " Ana ", "Gómez", "Ana@Example.com", "")
	require.NoError(t, err)
	return c
}

func address(t *testing.T, street string, isDefault bool) customer.NewAddressParams {
	t.Helper()
	a, err := shared.NewAddress(shared.AddressParams{Street: street, City: "Lima", Country: "PE"})
	require.NoError(t, err)
	return customer.NewAddressParams{FullName: "Ana Gómez", Phone: "5551234567", Address: a, Default: isDefault}
}

func TestRegisterCustomer(t *testing.T) {
	c := register(t)

	assert.Equal(t, "Ana Gómez", c.FullName())
	assert.Equal(t, shared.Email("ana@example.com"), c.Email())
	assert.Equal(t, customer.StatusActive, c.Status())
	assert.Equal(t, 0, c.LoyaltyPoints().Value())
	_, hasPhone := c.Phone()
	assert.False(t, hasPhone)

	events := c.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "customer.registered", events[0].EventName())
}

func TestRegisterCustomer_Validation(t *testing.T) {
	tenant := shared.NewID[shared.TenantRef]()
	long := "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijX"

	cases := map[string][4]string{
		"blank first": {"", "Gómez", "ana@example.com", ""},
		"long last":   {"Ana", long, "ana@example.com", ""},
		"bad email":   {"Ana", "Gómez", "not-an-email", ""},
		"short phone": {"Ana", "Gómez", "ana@example.com", "123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := customer.RegisterCustomer(clock, tenant, in[0], in[1], in[2], in[3])
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCustomer_Addresses(t *testing.T) {
	c := register(t)

	first, err := c.AddAddress(address(t, "Av. Uno 1", false))
	require.NoError(t, err)
	assert.True(t, first.IsDefault(), "first address becomes the default")

	second, err := c.AddAddress(address(t, "Av. Dos 2", true))
	require.NoError(t, err)
	assert.True(t, second.IsDefault())
	assert.False(t, first.IsDefault())

	third, err := c.AddAddress(address(t, "Av. Tres 3", false))
	require.NoError(t, err)
	assert.False(t, third.IsDefault())

	require.NoError(t, c.SetDefaultAddress(third.ID()))
	def, ok := c.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, third.ID(), def.ID())

	require.NoError(t, c.RemoveAddress(third.ID()))
	def, ok = c.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, first.ID(), def.ID(), "first remaining address is promoted")

	defaults := 0
	for _, a := range c.Addresses() {
		if a.IsDefault() {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	assert.ErrorIs(t, c.RemoveAddress(third.ID()), shared.ErrNotFound)
	assert.ErrorIs(t, c.SetDefaultAddress(third.ID()), shared.ErrNotFound)
}

func TestCustomer_LoyaltyPoints(t *testing.T) {
	c := register(t)

	err := c.RedeemLoyaltyPoints(10)
	assert.ErrorIs(t, err, shared.ErrInsufficient)
	assert.Equal(t, 0, c.LoyaltyPoints().Value())

	require.NoError(t, c.AddLoyaltyPoints(10))
	require.NoError(t, c.RedeemLoyaltyPoints(10))
	assert.Equal(t, 0, c.LoyaltyPoints().Value())

	assert.ErrorIs(t, c.AddLoyaltyPoints(0), shared.ErrValidation)
	assert.ErrorIs(t, c.RedeemLoyaltyPoints(-1), shared.ErrValidation)

	require.NoError(t, c.AddLoyaltyPoints(10))
	assert.ErrorIs(t, c.AddLoyaltyPoints(math.MaxInt), shared.ErrValidation)
	assert.Equal(t, 10, c.LoyaltyPoints().Value())
}

func TestCustomer_RecordOrder(t *testing.T) {
	c := register(t)
	_, ok := c.TotalSpent()
	assert.False(t, ok)

	require.NoError(t, c.RecordOrder(shared.MustMoney("38", "USD")))
	require.NoError(t, c.RecordOrder(shared.MustMoney("12", "USD")))
	spent, ok := c.TotalSpent()
	require.True(t, ok)
	assert.Equal(t, "50.00 USD", spent.String())
	assert.Equal(t, 2, c.TotalOrders())

	assert.ErrorIs(t, c.RecordOrder(shared.MustMoney("1", "EUR")), shared.ErrCurrencyMismatch)
	assert.Equal(t, 2, c.TotalOrders())
}

func TestCustomer_Status(t *testing.T) {
	c := register(t)

	assert.ErrorIs(t, c.Unblock(), shared.ErrStateConflict)
	require.NoError(t, c.Block("chargebacks"))
	assert.Equal(t, "chargebacks", c.BlockReason())
	assert.ErrorIs(t, c.Block("again"), shared.ErrStateConflict)
	require.NoError(t, c.Unblock())
	assert.True(t, c.IsActive())

	c.Deactivate()
	assert.Equal(t, customer.StatusInactive, c.Status())
	c.Activate()
	assert.True(t, c.IsActive())
}

func TestCustomer_VerifyEmailIsIdempotent(t *testing.T) {
	c := register(t)
	c.VerifyEmail()
	c.VerifyEmail()
	assert.True(t, c.IsEmailVerified())
}

func TestCustomer_SnapshotRestore(t *testing.T) {
	c := register(t)
	_, err := c.AddAddress(address(t, "Av. Uno 1", false))
	require.NoError(t, err)
	require.NoError(t, c.AddLoyaltyPoints(25))

	restored, err := customer.RestoreCustomer(clock, c.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), restored.Snapshot())
	assert.Empty(t, restored.PendingEvents())
}
