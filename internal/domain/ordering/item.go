package ordering

import (
	"strings"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// OrderLine is the input for one order item.
type OrderLine struct {
	ProductID   catalog.ProductID
	VariantID   *catalog.VariantID
	ProductName string
	VariantName string
	SKU         string
	UnitPrice   shared.Money
	Quantity    int
	Discount    *shared.Money
	ImageURL    string
}

// OrderItem is a frozen copy of what was bought. It never changes after the
// order is placed.
type OrderItem struct {
	shared.Entity[OrderItem]

	productID   catalog.ProductID
	variantID   *catalog.VariantID
	productName string
	variantName string
	sku         string
	unitPrice   shared.Money
	quantity    int
	discount    *shared.Money
	imageURL    string
}

func NewOrderItem(l OrderLine) (*OrderItem, error) {
	if l.ProductID.IsZero() {
		return nil, &shared.ValidationError{Field: "product_id", Reason: "is required"}
	}
	name, err := shared.RequireText("product_name", l.ProductName, 0)
	if err != nil {
		return nil, err
	}
	sku, err := shared.RequireText("sku", l.SKU, 0)
	if err != nil {
		return nil, err
	}
	if l.Quantity <= 0 {
		return nil, &shared.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if l.UnitPrice.Currency() == "" {
		return nil, &shared.ValidationError{Field: "unit_price", Reason: "is required"}
	}
	item := &OrderItem{
		Entity:      shared.NewEntity[OrderItem](),
		productID:   l.ProductID,
		variantID:   l.VariantID,
		productName: name,
		variantName: strings.TrimSpace(l.VariantName),
		sku:         sku,
		unitPrice:   l.UnitPrice,
		quantity:    l.Quantity,
		imageURL:    strings.TrimSpace(l.ImageURL),
	}
	if l.Discount != nil {
		within, err := l.Discount.LessThanOrEqual(item.Subtotal())
		if err != nil {
			return nil, err
		}
		if !within {
			return nil, &shared.ValidationError{Field: "discount", Reason: "must not exceed the line subtotal"}
		}
		d := *l.Discount
		item.discount = &d
	}
	return item, nil
}

func (i *OrderItem) ProductID() catalog.ProductID { return i.productID }
func (i *OrderItem) ProductName() string { return i.productName }
func (i *OrderItem) VariantName() string { return i.variantName }
func (i *OrderItem) SKU() string { return i.sku }
func (i *OrderItem) UnitPrice() shared.Money { return i.unitPrice }
func (i *OrderItem) Quantity() int { return i.quantity }
func (i *OrderItem) ImageURL() string { return i.imageURL }

func (i *OrderItem) VariantID() (catalog.VariantID, bool) {
	if i.variantID == nil {
		return catalog.VariantID{}, false
	}
	return *i.variantID, true
}

func (i *OrderItem) Discount() (shared.Money, bool) {
	if i.discount == nil {
		return shared.Money{}, false
	}
	return *i.discount, true
}

// Subtotal is unit price times quantity.
func (i *OrderItem) Subtotal() shared.Money {
	m, _ := i.unitPrice.MultiplyInt(i.quantity)
	return m
}

// Total is the subtotal less the line discount.
func (i *OrderItem) Total() shared.Money {
	sub := i.Subtotal()
	if i.discount == nil {
		return sub
	}
	t, _ := sub.Subtract(*i.discount)
	return t
}

// OrderItemSnapshot is the persisted form of an OrderItem.
type OrderItemSnapshot struct {
	ID          OrderItemID        `json:"id"`
	ProductID   catalog.ProductID  `json:"product_id"`
	VariantID   *catalog.VariantID `json:"variant_id,omitempty"`
	ProductName string             `json:"product_name"`
	VariantName string             `json:"variant_name,omitempty"`
	SKU         string             `json:"sku"`
	UnitPrice   shared.Money       `json:"unit_price"`
	Quantity    int                `json:"quantity"`
	Discount    *shared.Money      `json:"discount,omitempty"`
	ImageURL    string             `json:"image_url,omitempty"`
}

func (i *OrderItem) snapshot() OrderItemSnapshot {
	return OrderItemSnapshot{
		ID:          i.ID(),
		ProductID:   i.productID,
		VariantID:   i.variantID,
		ProductName: i.productName,
		VariantName: i.variantName,
		SKU:         i.sku,
		UnitPrice:   i.unitPrice,
		Quantity:    i.quantity,
		Discount:    i.discount,
		ImageURL:    i.imageURL,
	}
}

func restoreOrderItem(s OrderItemSnapshot) (*OrderItem, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &OrderItem{
		Entity:      entity,
		productID:   s.ProductID,
		variantID:   s.VariantID,
		productName: s.ProductName,
		variantName: s.VariantName,
		sku:         s.SKU,
		unitPrice:   s.UnitPrice,
		quantity:    s.Quantity,
		discount:    s.Discount,
		imageURL:    s.ImageURL,
	}, nil
}
