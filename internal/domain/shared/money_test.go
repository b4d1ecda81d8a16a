package shared_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

func TestNewMoney_Validation(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		currency string
		wantErr  bool
	}{
		{"valid", "10.50", "usd", false},
		{"zero", "0", "EUR", false},
		{"negative", "-1", "USD", true},
		{"blank currency", "1", "  ", true},
		{"long currency", "1", "USDX", true},
		{"digits in currency", "1", "U5D", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := shared.MoneyFromString(tc.amount, tc.currency)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, shared.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Len(t, m.Currency(), 3)
		})
	}
}

func TestMoneyFromFloat_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := shared.MoneyFromFloat(f, "USD")
		assert.ErrorIs(t, err, shared.ErrValidation, "amount %v", f)
	}

	m, err := shared.MoneyFromFloat(12.5, "USD")
	require.NoError(t, err)
	assert.Equal(t, "12.50 USD", m.String())
}

func TestMoney_UppercasesCurrency(t *testing.T) {
	m := shared.MustMoney("1", "usd")
	assert.Equal(t, "USD", m.Currency())
}

func TestMoney_AddThenSubtractRoundTrips(t *testing.T) {
	amounts := []string{"0", "0.01", "10", "35.00", "999999.99", "1.333333"}
	for _, a := range amounts {
		for _, b := range amounts {
			m1 := shared.MustMoney(a, "USD")
			m2 := shared.MustMoney(b, "USD")

			sum, err := m1.Add(m2)
			require.NoError(t, err)
			back, err := sum.Subtract(m2)
			require.NoError(t, err)

			assert.True(t, back.Equal(m1), "%s + %s - %s = %s", m1, m2, m2, back)
		}
	}
}

func TestMoney_DifferentCurrenciesFail(t *testing.T) {
	usd := shared.MustMoney("10", "USD")
	eur := shared.MustMoney("5", "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)

	_, err = usd.Subtract(eur)
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)

	_, err = usd.Cmp(eur)
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)

	_, err = usd.GreaterThan(eur)
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)

	_, err = usd.LessThanOrEqual(eur)
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)

	var mismatch *shared.CurrencyMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "USD", mismatch.Left)
	assert.Equal(t, "EUR", mismatch.Right)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestMoney_SubtractNeverNegative(t *testing.T) {
	_, err := shared.MustMoney("5", "USD").Subtract(shared.MustMoney("5.01", "USD"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestMoney_ScalarArithmeticPreservesCurrency(t *testing.T) {
	m := shared.MustMoney("10", "EUR")

	doubled, err := m.MultiplyInt(3)
	require.NoError(t, err)
	assert.Equal(t, "30.00 EUR", doubled.String())

	half, err := m.Divide(decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.Equal(t, "2.50 EUR", half.String())

	_, err = m.Divide(decimal.Zero)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = m.Multiply(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestMoney_ApplyPercentageRange(t *testing.T) {
	m := shared.MustMoney("200", "USD")

	got, err := m.ApplyPercentage(decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	assert.Equal(t, "30.00 USD", got.String())

	_, err = m.ApplyPercentage(decimal.RequireFromString("1.01"))
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = m.ApplyPercentage(decimal.RequireFromString("-0.1"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestMoney_Comparisons(t *testing.T) {
	small := shared.MustMoney("1", "USD")
	big := shared.MustMoney("2", "USD")

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := big.LessThan(small)
	require.NoError(t, err)
	assert.False(t, lt)

	ge, err := small.GreaterThanOrEqual(shared.MustMoney("1.00", "USD"))
	require.NoError(t, err)
	assert.True(t, ge)
}

func TestMoney_JSON(t *testing.T) {
	m := shared.MustMoney("12.34", "GBP")
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var back shared.Money
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(m))

	err = json.Unmarshal([]byte(`{"amount":"-1","currency":"GBP"}`), &back)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSumMoney(t *testing.T) {
	total, err := shared.SumMoney("USD", shared.MustMoney("1.10", "USD"), shared.MustMoney("2.20", "USD"))
	require.NoError(t, err)
	assert.Equal(t, "3.30 USD", total.String())

	empty, err := shared.SumMoney("EUR")
	require.NoError(t, err)
	assert.Equal(t, "0.00 EUR", empty.String())

	_, err = shared.SumMoney("USD", shared.MustMoney("1", "USD"), shared.MustMoney("1", "EUR"))
	assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)
}

func TestPercentage(t *testing.T) {
	p, err := shared.PercentageFromPercent(decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.Equal(t, "25%", p.String())

	q, err := shared.PercentageFromFraction(decimal.RequireFromString("0.25"))
	require.NoError(t, err)
	assert.True(t, p.Equal(q))

	got, err := p.ApplyTo(shared.MustMoney("80", "USD"))
	require.NoError(t, err)
	assert.Equal(t, "20.00 USD", got.String())

	_, err = shared.PercentageFromPercent(decimal.NewFromInt(101))
	assert.ErrorIs(t, err, shared.ErrValidation)
}
