package shared

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used where no amount fixes the currency, such as the
// total of an empty cart.
const DefaultCurrency = "USD"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Money is a non-negative decimal amount in an ISO 4217 currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates and builds a Money value. The currency is uppercased.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	if amount.IsNegative() {
		return Money{}, invalid("amount", "must not be negative")
	}
	return Money{amount: amount, currency: cur}, nil
}

// MoneyFromString parses a decimal amount such as "19.99".
func MoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, invalid("amount", fmt.Sprintf("%q is not a decimal number", amount))
	}
	return NewMoney(d, currency)
}

// MoneyFromFloat builds Money from a float literal. NaN and infinities are
// rejected.
func MoneyFromFloat(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, invalid("amount", "must be a finite number")
	}
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

// MustMoney is like MoneyFromString but panics on invalid input. It is meant
// for constants and tests.
func MustMoney(amount, currency string) Money {
	m, err := MoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func normalizeCurrency(currency string) (string, error) {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		return "", invalid("currency", "is required")
	}
	if !currencyPattern.MatchString(cur) {
		return "", invalid("currency", fmt.Sprintf("%q is not a three-letter ISO code", currency))
	}
	return cur, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Equal reports structural equality. Amounts compare numerically, so 1.5 and
// 1.50 are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) requireSameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return &CurrencyMismatchError{Op: op, Left: m.currency, Right: other.currency}
	}
	return nil
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.requireSameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract fails when the result would be negative.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.requireSameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, invalid("amount", fmt.Sprintf("subtracting %s from %s would be negative", other, m))
	}
	return Money{amount: result, currency: m.currency}, nil
}

func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, invalid("multiplier", "must not be negative")
	}
	return Money{amount: m.amount.Mul(factor), currency: m.currency}, nil
}

func (m Money) MultiplyInt(n int) (Money, error) {
	return m.Multiply(decimal.NewFromInt(int64(n)))
}

func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if !divisor.IsPositive() {
		return Money{}, invalid("divisor", "must be greater than zero")
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

// ApplyPercentage multiplies by p, which must lie in [0, 1].
func (m Money) ApplyPercentage(p decimal.Decimal) (Money, error) {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(1)) {
		return Money{}, invalid("percentage", "must be between 0 and 1")
	}
	return Money{amount: m.amount.Mul(p), currency: m.currency}, nil
}

// Cmp compares two amounts in the same currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.requireSameCurrency("compare", other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c > 0, err
}

func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c >= 0, err
}

func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c < 0, err
}

func (m Money) LessThanOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c <= 0, err
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// SumMoney adds amounts that share currency. An empty slice yields zero in
// the fallback currency.
func SumMoney(fallbackCurrency string, amounts ...Money) (Money, error) {
	if len(amounts) == 0 {
		return ZeroMoney(fallbackCurrency)
	}
	total := Money{amount: decimal.Zero, currency: amounts[0].currency}
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// Percentage is a fraction in [0, 1].
type Percentage struct {
	fraction decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// PercentageFromFraction accepts values such as 0.15.
func PercentageFromFraction(f decimal.Decimal) (Percentage, error) {
	if f.IsNegative() || f.GreaterThan(decimal.NewFromInt(1)) {
		return Percentage{}, invalid("percentage", "fraction must be between 0 and 1")
	}
	return Percentage{fraction: f}, nil
}

// PercentageFromPercent accepts values such as 15.
func PercentageFromPercent(p decimal.Decimal) (Percentage, error) {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return Percentage{}, invalid("percentage", "must be between 0 and 100")
	}
	return Percentage{fraction: p.Div(hundred)}, nil
}

func (p Percentage) Fraction() decimal.Decimal { return p.fraction }

func (p Percentage) Equal(other Percentage) bool { return p.fraction.Equal(other.fraction) }

func (p Percentage) ApplyTo(m Money) (Money, error) {
	return m.ApplyPercentage(p.fraction)
}

func (p Percentage) String() string {
	return p.fraction.Mul(hundred).String() + "%"
}
