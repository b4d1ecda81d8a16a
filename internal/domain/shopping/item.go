package shopping

import (
	"strings"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

const (
	MinItemQuantity = 1
	MaxItemQuantity = 999
)

// NewCartLine describes a product being put in a cart. Name and price are a
// snapshot of the product at the time it was added.
type NewCartLine struct {
	ProductID   catalog.ProductID
	VariantID   *catalog.VariantID
	ProductName string
	VariantName string
	UnitPrice   shared.Money
	Quantity    int
	ImageURL    string
}

// CartItem is one line of a shopping cart.
type CartItem struct {
	shared.Entity[CartItem]

	productID   catalog.ProductID
	variantID   *catalog.VariantID
	productName string
	variantName string
	unitPrice   shared.Money
	quantity    int
	imageURL    string
	addedAt     time.Time
}

func newCartItem(line NewCartLine, at time.Time) (*CartItem, error) {
	if line.ProductID.IsZero() {
		return nil, &shared.ValidationError{Field: "product_id", Reason: "is required"}
	}
	name, err := shared.RequireText("product_name", line.ProductName, 0)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(line.Quantity); err != nil {
		return nil, err
	}
	if !line.UnitPrice.IsPositive() {
		return nil, &shared.ValidationError{Field: "unit_price", Reason: "must be greater than zero"}
	}
	return &CartItem{
		Entity:      shared.NewEntity[CartItem](),
		productID:   line.ProductID,
		variantID:   line.VariantID,
		productName: name,
		variantName: strings.TrimSpace(line.VariantName),
		unitPrice:   line.UnitPrice,
		quantity:    line.Quantity,
		imageURL:    strings.TrimSpace(line.ImageURL),
		addedAt:     at,
	}, nil
}

func checkQuantity(q int) error {
	if q < MinItemQuantity || q > MaxItemQuantity {
		return &shared.ValidationError{Field: "quantity", Reason: "must be between 1 and 999"}
	}
	return nil
}

func (i *CartItem) ProductID() catalog.ProductID { return i.productID }
func (i *CartItem) ProductName() string { return i.productName }
func (i *CartItem) VariantName() string { return i.variantName }
func (i *CartItem) UnitPrice() shared.Money { return i.unitPrice }
func (i *CartItem) Quantity() int { return i.quantity }
func (i *CartItem) ImageURL() string { return i.imageURL }
func (i *CartItem) AddedAt() time.Time { return i.addedAt }

func (i *CartItem) VariantID() (catalog.VariantID, bool) {
	if i.variantID == nil {
		return catalog.VariantID{}, false
	}
	return *i.variantID, true
}

// Subtotal is unit price times quantity.
func (i *CartItem) Subtotal() shared.Money {
	m, _ := i.unitPrice.MultiplyInt(i.quantity)
	return m
}

// matches reports whether the line holds productID in the given variant. A
// nil variant only matches lines without one.
func (i *CartItem) matches(productID catalog.ProductID, variantID *catalog.VariantID) bool {
	if i.productID != productID {
		return false
	}
	if variantID == nil || i.variantID == nil {
		return variantID == nil && i.variantID == nil
	}
	return *variantID == *i.variantID
}

func (i *CartItem) UpdateQuantity(q int) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	i.quantity = q
	return nil
}

func (i *CartItem) IncreaseQuantity(n int) error {
	if n <= 0 {
		return &shared.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if n > MaxItemQuantity-i.quantity {
		return &shared.ValidationError{Field: "quantity", Reason: "cannot exceed 999"}
	}
	i.quantity += n
	return nil
}

// DecreaseQuantity lowers the quantity, which must stay at least one. Remove
// the item from its cart to drop it entirely.
func (i *CartItem) DecreaseQuantity(n int) error {
	if n <= 0 {
		return &shared.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if n > i.quantity-MinItemQuantity {
		return &shared.ValidationError{Field: "quantity", Reason: "cannot drop below 1"}
	}
	i.quantity -= n
	return nil
}

func (i *CartItem) UpdatePrice(price shared.Money) error {
	if !price.IsPositive() {
		return &shared.ValidationError{Field: "unit_price", Reason: "must be greater than zero"}
	}
	i.unitPrice = price
	return nil
}

// CartItemSnapshot is the persisted form of a CartItem.
type CartItemSnapshot struct {
	ID          CartItemID         `json:"id"`
	ProductID   catalog.ProductID  `json:"product_id"`
	VariantID   *catalog.VariantID `json:"variant_id,omitempty"`
	ProductName string             `json:"product_name"`
	VariantName string             `json:"variant_name,omitempty"`
	UnitPrice   shared.Money       `json:"unit_price"`
	Quantity    int                `json:"quantity"`
	ImageURL    string             `json:"image_url,omitempty"`
	AddedAt     time.Time          `json:"added_at"`
}

func (i *CartItem) snapshot() CartItemSnapshot {
	return CartItemSnapshot{
		ID:          i.ID(),
		ProductID:   i.productID,
		VariantID:   i.variantID,
		ProductName: i.productName,
		VariantName: i.variantName,
		UnitPrice:   i.unitPrice,
		Quantity:    i.quantity,
		ImageURL:    i.imageURL,
		AddedAt:     i.addedAt,
	}
}

func restoreCartItem(s CartItemSnapshot) (*CartItem, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &CartItem{
		Entity:      entity,
		productID:   s.ProductID,
		variantID:   s.VariantID,
		productName: s.ProductName,
		variantName: s.VariantName,
		unitPrice:   s.UnitPrice,
		quantity:    s.Quantity,
		imageURL:    s.ImageURL,
		addedAt:     s.AddedAt,
	}, nil
}
