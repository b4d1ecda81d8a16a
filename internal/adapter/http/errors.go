package http

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// toHumaError translates domain errors to Huma HTTP errors by kind.
func toHumaError(err error) error {
	switch shared.KindOf(err) {
	case shared.KindValidation:
		return huma.Error422UnprocessableEntity(err.Error())
	case shared.KindNotFound:
		return huma.Error404NotFound(err.Error())
	case shared.KindStateConflict, shared.KindInsufficient, shared.KindConflict:
		return huma.Error409Conflict(err.Error())
	case shared.KindPrecondition:
		return huma.Error400BadRequest(err.Error())
	case shared.KindConcurrency:
		return huma.Error412PreconditionFailed(err.Error())
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}

// parseID converts a path or body identifier, reporting the field on failure.
func parseID[T any](field, s string) (shared.ID[T], error) {
	id, err := shared.ParseID[T](s)
	if err != nil {
		return id, huma.Error422UnprocessableEntity(field + ": invalid identifier")
	}
	return id, nil
}

// MoneyBody is the wire form of an amount.
type MoneyBody struct {
	Amount   string `json:"amount" pattern:"^-?[0-9]+(\\.[0-9]+)?$" doc:"Decimal amount" example:"19.99"`
	Currency string `json:"currency" minLength:"3" maxLength:"3" doc:"ISO 4217 code" example:"USD"`
}

func toMoneyBody(m shared.Money) MoneyBody {
	return MoneyBody{Amount: m.Amount().StringFixed(2), Currency: m.Currency()}
}

func (b MoneyBody) money() (shared.Money, error) {
	m, err := shared.MoneyFromString(b.Amount, b.Currency)
	if err != nil {
		return shared.Money{}, toHumaError(err)
	}
	return m, nil
}

func optionalMoney(b *MoneyBody) (*shared.Money, error) {
	if b == nil {
		return nil, nil
	}
	m, err := b.money()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const timeLayout = "2006-01-02T15:04:05Z"
