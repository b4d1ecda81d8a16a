package ordering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// OrderNumber is the human facing order reference, ORD-YYYYMMDD-XXXXXXXXXXXX.
type OrderNumber string

const orderNumberPrefix = "ORD"

// NewOrderNumber derives a number for an order placed at. Uniqueness per
// tenant is enforced by storage.
func NewOrderNumber(at time.Time) (OrderNumber, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	hex := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
	// Low 24 bits of the millisecond timestamp, then 24 random bits.
	suffix := hex[6:12] + hex[26:32]
	return OrderNumber(fmt.Sprintf("%s-%s-%s", orderNumberPrefix, at.UTC().Format("20060102"), suffix)), nil
}

func ParseOrderNumber(s string) (OrderNumber, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", &shared.ValidationError{Field: "order_number", Reason: "is required"}
	}
	return OrderNumber(s), nil
}

func (n OrderNumber) String() string { return string(n) }

// TrackingNumber is a carrier shipment reference.
type TrackingNumber string

func ParseTrackingNumber(s string) (TrackingNumber, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", &shared.ValidationError{Field: "tracking_number", Reason: "is required"}
	}
	return TrackingNumber(s), nil
}

func (n TrackingNumber) String() string { return string(n) }

// FulfillmentType is how an order reaches the customer.
type FulfillmentType string

const (
	StandardShipping FulfillmentType = "standard_shipping"
	ExpressShipping  FulfillmentType = "express_shipping"
	LocalDelivery    FulfillmentType = "local_delivery"
	StorePickup      FulfillmentType = "store_pickup"
	DigitalDownload  FulfillmentType = "digital_download"
)

func (f FulfillmentType) Valid() bool {
	switch f {
	case StandardShipping, ExpressShipping, LocalDelivery, StorePickup, DigitalDownload:
		return true
	}
	return false
}

// RequiresShipping reports whether goods travel to a shipping address.
func (f FulfillmentType) RequiresShipping() bool {
	return f != DigitalDownload && f != StorePickup
}

// PaymentStatus tracks the money side of an order.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentAuthorized        PaymentStatus = "authorized"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentFailed            PaymentStatus = "failed"
	PaymentCancelled         PaymentStatus = "cancelled"
)

// ShippingInfo is the recipient of a shipped order.
type ShippingInfo struct {
	FullName string             `json:"full_name"`
	Email    shared.Email       `json:"email"`
	Phone    shared.PhoneNumber `json:"phone"`
	Address  shared.Address     `json:"address"`
}

func NewShippingInfo(fullName, email, phone string, address shared.Address) (ShippingInfo, error) {
	name, err := shared.RequireText("full_name", fullName, 200)
	if err != nil {
		return ShippingInfo{}, err
	}
	e, err := shared.ParseEmail(email)
	if err != nil {
		return ShippingInfo{}, err
	}
	p, err := shared.ParsePhoneNumber(phone)
	if err != nil {
		return ShippingInfo{}, err
	}
	if address.IsZero() {
		return ShippingInfo{}, &shared.ValidationError{Field: "address", Reason: "is required"}
	}
	return ShippingInfo{FullName: name, Email: e, Phone: p, Address: address}, nil
}
