package tenant

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// Vertical is the line of business a store operates in. It selects the
// default feature set.
type Vertical string

const (
	VerticalRetail      Vertical = "retail"
	VerticalFood        Vertical = "food_and_beverage"
	VerticalServices    Vertical = "services"
	VerticalPharmacy    Vertical = "pharmacy"
	VerticalB2B         Vertical = "b2b_wholesale"
	VerticalDigital     Vertical = "digital_products"
	VerticalMarketplace Vertical = "marketplace"
)

// Verticals lists every supported vertical.
var Verticals = []Vertical{
	VerticalRetail,
	VerticalFood,
	VerticalServices,
	VerticalPharmacy,
	VerticalB2B,
	VerticalDigital,
	VerticalMarketplace,
}

func (v Vertical) Valid() bool {
	switch v {
	case VerticalRetail, VerticalFood, VerticalServices, VerticalPharmacy,
		VerticalB2B, VerticalDigital, VerticalMarketplace:
		return true
	}
	return false
}

// Features toggles optional storefront capabilities.
type Features struct {
	Variants      bool `json:"variants"`
	Modifiers     bool `json:"modifiers"`
	DeliveryZones bool `json:"delivery_zones"`
	TimeSlots     bool `json:"time_slots"`
	Prescriptions bool `json:"prescriptions"`
	QuoteRequests bool `json:"quote_requests"`
	VolumePricing bool `json:"volume_pricing"`
	MultiVendor   bool `json:"multi_vendor"`
	Subscriptions bool `json:"subscriptions"`
	Reviews       bool `json:"reviews"`
	Wishlist      bool `json:"wishlist"`
	LoyaltyPoints bool `json:"loyalty_points"`
}

// Settings is the storefront configuration of a tenant.
type Settings struct {
	Features                 Features        `json:"features"`
	AllowGuestCheckout       bool            `json:"allow_guest_checkout"`
	RequireEmailVerification bool            `json:"require_email_verification"`
	MinimumOrderAmount       decimal.Decimal `json:"minimum_order_amount"`
	StoreName                string          `json:"store_name"`
	StoreDescription         string          `json:"store_description,omitempty"`
	DefaultCurrency          string          `json:"default_currency"`
	DefaultLanguage          string          `json:"default_language"`
	TimeZone                 string          `json:"time_zone"`
}

// DefaultSettings returns the preset for v. Unknown verticals get the retail
// preset.
func DefaultSettings(v Vertical) Settings {
	s := Settings{
		DefaultCurrency:    shared.DefaultCurrency,
		DefaultLanguage:    "es",
		TimeZone:           "UTC",
		MinimumOrderAmount: decimal.Zero,
	}
	switch v {
	case VerticalFood:
		s.Features = Features{Modifiers: true, DeliveryZones: true, TimeSlots: true, Reviews: true, LoyaltyPoints: true}
		s.AllowGuestCheckout = true
		s.MinimumOrderAmount = decimal.NewFromInt(10)
		s.StoreName = "Mi Restaurante"
	case VerticalServices:
		s.Features = Features{Modifiers: true, TimeSlots: true, QuoteRequests: true, Subscriptions: true, Reviews: true}
		s.RequireEmailVerification = true
		s.StoreName = "Mi Servicio"
	case VerticalPharmacy:
		s.Features = Features{Variants: true, DeliveryZones: true, TimeSlots: true, Prescriptions: true, Subscriptions: true, LoyaltyPoints: true}
		s.RequireEmailVerification = true
		s.StoreName = "Mi Farmacia"
	case VerticalB2B:
		s.Features = Features{Variants: true, QuoteRequests: true, VolumePricing: true}
		s.RequireEmailVerification = true
		s.MinimumOrderAmount = decimal.NewFromInt(100)
		s.StoreName = "Mi Tienda B2B"
	case VerticalDigital:
		s.Features = Features{VolumePricing: true, Subscriptions: true, Reviews: true, Wishlist: true}
		s.AllowGuestCheckout = true
		s.StoreName = "Mi Tienda Digital"
	case VerticalMarketplace:
		s.Features = Features{Variants: true, DeliveryZones: true, MultiVendor: true, Reviews: true, Wishlist: true, LoyaltyPoints: true}
		s.AllowGuestCheckout = true
		s.StoreName = "Mi Marketplace"
	default:
		s.Features = Features{Variants: true, Reviews: true, Wishlist: true, LoyaltyPoints: true}
		s.AllowGuestCheckout = true
		s.StoreName = "Mi Tienda"
	}
	return s
}

// Validate checks the settings a tenant may save.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.StoreName) == "" {
		return &shared.ValidationError{Field: "store_name", Reason: "is required"}
	}
	if len(s.DefaultCurrency) != 3 {
		return &shared.ValidationError{Field: "default_currency", Reason: "must be a 3-letter ISO code"}
	}
	if s.MinimumOrderAmount.IsNegative() {
		return &shared.ValidationError{Field: "minimum_order_amount", Reason: "must not be negative"}
	}
	return nil
}

// MinimumOrder is MinimumOrderAmount in the default currency.
func (s Settings) MinimumOrder() (shared.Money, error) {
	return shared.NewMoney(s.MinimumOrderAmount, s.DefaultCurrency)
}
