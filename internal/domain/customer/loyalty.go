package customer

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// LoyaltyPoints is a non-negative points balance.
type LoyaltyPoints struct {
	balance int
}

func NewLoyaltyPoints(n int) (LoyaltyPoints, error) {
	if n < 0 {
		return LoyaltyPoints{}, &shared.ValidationError{Field: "loyalty_points", Reason: "must not be negative"}
	}
	return LoyaltyPoints{balance: n}, nil
}

func (p LoyaltyPoints) Value() int { return p.balance }

func (p LoyaltyPoints) HasEnough(n int) bool { return p.balance >= n }

func (p LoyaltyPoints) Add(n int) (LoyaltyPoints, error) {
	if n <= 0 {
		return p, &shared.ValidationError{Field: "points", Reason: "must be greater than zero"}
	}
	if n > math.MaxInt-p.balance {
		return p, &shared.ValidationError{Field: "points", Reason: "balance would overflow"}
	}
	return LoyaltyPoints{balance: p.balance + n}, nil
}

func (p LoyaltyPoints) Subtract(n int) (LoyaltyPoints, error) {
	if n <= 0 {
		return p, &shared.ValidationError{Field: "points", Reason: "must be greater than zero"}
	}
	if !p.HasEnough(n) {
		return p, &shared.InsufficientError{Resource: "loyalty points", Requested: int64(n), Available: int64(p.balance)}
	}
	return LoyaltyPoints{balance: p.balance - n}, nil
}

func (p LoyaltyPoints) String() string { return strconv.Itoa(p.balance) }

func (p LoyaltyPoints) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.balance)
}

func (p *LoyaltyPoints) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	parsed, err := NewLoyaltyPoints(n)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
