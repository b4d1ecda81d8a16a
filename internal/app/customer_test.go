package app_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

func TestCustomerService_Register(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shop", tenant.VerticalRetail)
	e.sink.Reset()

	c := e.customer(t, ctx, "Ana@Example.com")
	assert.Equal(t, "ana@example.com", c.Email().String())
	assert.Equal(t, customer.StatusActive, c.Status())
	assert.Equal(t, []string{"customer.registered"}, e.sink.Names())

	_, err := e.customers.Register(ctx, app.RegisterCustomerCommand{FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCustomerService_EmailIsScopedPerTenant(t *testing.T) {
	e := newEnv(t)
	first, _ := e.tenantCtx(t, "first", tenant.VerticalRetail)
	second, _ := e.tenantCtx(t, "second", tenant.VerticalRetail)

	c := e.customer(t, first, "ana@example.com")
	e.customer(t, second, "ana@example.com")

	_, err := e.customers.GetCustomer(second, app.GetCustomerQuery{CustomerID: c.ID()})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerService_Addresses(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shop", tenant.VerticalRetail)
	c := e.customer(t, ctx, "ana@example.com")

	home, err := shared.NewAddress(shared.AddressParams{Street: "Calle 1", City: "Madrid", Country: "ES"})
	require.NoError(t, err)

	first, err := e.customers.AddAddress(ctx, app.AddAddressCommand{
		CustomerID: c.ID(),
		Address:    customer.NewAddressParams{FullName: "Ana Diaz", Phone: "+34 600 123 456", Address: home, Label: "home"},
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault())

	second, err := e.customers.AddAddress(ctx, app.AddAddressCommand{
		CustomerID: c.ID(),
		Address:    customer.NewAddressParams{FullName: "Ana Diaz", Phone: "+34 600 123 456", Address: home, Label: "work"},
	})
	require.NoError(t, err)
	assert.False(t, second.IsDefault())

	_, err = e.customers.SetDefaultAddress(ctx, app.SetDefaultAddressCommand{CustomerID: c.ID(), AddressID: second.ID()})
	require.NoError(t, err)

	got, err := e.customers.GetCustomer(ctx, app.GetCustomerQuery{CustomerID: c.ID()})
	require.NoError(t, err)
	require.Len(t, got.Addresses(), 2)
	def, ok := got.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, second.ID(), def.ID())
	assert.Equal(t, "Madrid", def.Address().City())
}

func TestCustomerService_Loyalty(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shop", tenant.VerticalRetail)
	c := e.customer(t, ctx, "ana@example.com")

	c, err := e.customers.AdjustLoyalty(ctx, app.LoyaltyCommand{CustomerID: c.ID(), Points: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, c.LoyaltyPoints().Value())

	c, err = e.customers.AdjustLoyalty(ctx, app.LoyaltyCommand{CustomerID: c.ID(), Points: -20})
	require.NoError(t, err)
	assert.Equal(t, 30, c.LoyaltyPoints().Value())

	_, err = e.customers.AdjustLoyalty(ctx, app.LoyaltyCommand{CustomerID: c.ID(), Points: -31})
	assert.ErrorIs(t, err, shared.ErrInsufficient)

	_, err = e.customers.AdjustLoyalty(ctx, app.LoyaltyCommand{CustomerID: c.ID(), Points: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)

	got, err := e.customers.GetCustomer(ctx, app.GetCustomerQuery{CustomerID: c.ID()})
	require.NoError(t, err)
	assert.Equal(t, 30, got.LoyaltyPoints().Value())
}

func TestCustomerService_AddAndRedeemPoints(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shop", tenant.VerticalRetail)
	c := e.customer(t, ctx, "ana@example.com")

	c, err := e.customers.AddLoyaltyPoints(ctx, app.PointsCommand{CustomerID: c.ID(), Points: 100})
	require.NoError(t, err)
	c, err = e.customers.RedeemLoyaltyPoints(ctx, app.RedeemPointsCommand{CustomerID: c.ID(), Points: 40})
	require.NoError(t, err)
	assert.Equal(t, 60, c.LoyaltyPoints().Value())

	_, err = e.customers.AddLoyaltyPoints(ctx, app.PointsCommand{CustomerID: c.ID(), Points: -5})
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = e.customers.RedeemLoyaltyPoints(ctx, app.RedeemPointsCommand{CustomerID: c.ID(), Points: 61})
	assert.ErrorIs(t, err, shared.ErrInsufficient)
	_, err = e.customers.AddLoyaltyPoints(ctx, app.PointsCommand{CustomerID: c.ID(), Points: math.MaxInt})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCustomerService_BlockAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.tenantCtx(t, "shop", tenant.VerticalRetail)
	c := e.customer(t, ctx, "ana@example.com")

	c, err := e.customers.Block(ctx, app.BlockCustomerCommand{CustomerID: c.ID(), Reason: "chargebacks"})
	require.NoError(t, err)
	assert.Equal(t, customer.StatusBlocked, c.Status())
	assert.Equal(t, "chargebacks", c.BlockReason())

	c, err = e.customers.Unblock(ctx, app.UnblockCustomerCommand{CustomerID: c.ID()})
	require.NoError(t, err)
	assert.Equal(t, customer.StatusActive, c.Status())

	require.NoError(t, e.customers.Delete(ctx, app.DeleteCustomerCommand{CustomerID: c.ID()}))
	_, err = e.customers.GetCustomer(ctx, app.GetCustomerQuery{CustomerID: c.ID()})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
