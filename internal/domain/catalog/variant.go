package catalog

import (
	"maps"
	"strings"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type (
	VariantID = shared.ID[ProductVariant]
	ImageID   = shared.ID[ProductImage]
)

// ProductVariant is a purchasable option of a product, such as a size or
// colour. It references its product by id and is persisted on its own.
type ProductVariant struct {
	shared.Entity[ProductVariant]
	shared.Versioned

	productID      ProductID
	name           string
	sku            Sku
	price          shared.Money
	compareAtPrice *shared.Money
	stockQuantity  int
	attributes     map[string]string
	imageURL       string
	displayOrder   int
	active         bool
}

func NewProductVariant(productID ProductID, name, sku string, price shared.Money) (*ProductVariant, error) {
	if productID.IsZero() {
		return nil, &shared.ValidationError{Field: "product_id", Reason: "is required"}
	}
	n, err := shared.RequireText("name", name, maxProductNameLength)
	if err != nil {
		return nil, err
	}
	s, err := ParseSku(sku)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, &shared.ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	return &ProductVariant{
		Entity:     shared.NewEntity[ProductVariant](),
		productID:  productID,
		name:       n,
		sku:        s,
		price:      price,
		attributes: make(map[string]string),
		active:     true,
	}, nil
}

func (v *ProductVariant) ProductID() ProductID { return v.productID }
func (v *ProductVariant) Name() string { return v.name }
func (v *ProductVariant) SKU() Sku { return v.sku }
func (v *ProductVariant) Price() shared.Money { return v.price }
func (v *ProductVariant) StockQuantity() int { return v.stockQuantity }
func (v *ProductVariant) ImageURL() string { return v.imageURL }
func (v *ProductVariant) DisplayOrder() int { return v.displayOrder }
func (v *ProductVariant) IsActive() bool { return v.active }
func (v *ProductVariant) IsInStock() bool { return v.stockQuantity > 0 }

func (v *ProductVariant) Attributes() map[string]string { return maps.Clone(v.attributes) }

func (v *ProductVariant) CompareAtPrice() (shared.Money, bool) {
	if v.compareAtPrice == nil {
		return shared.Money{}, false
	}
	return *v.compareAtPrice, true
}

func (v *ProductVariant) UpdatePrice(price shared.Money) error {
	if !price.IsPositive() {
		return &shared.ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	v.price = price
	return nil
}

func (v *ProductVariant) SetCompareAtPrice(m shared.Money) error {
	above, err := m.GreaterThan(v.price)
	if err != nil {
		return err
	}
	if !above {
		return &shared.ValidationError{Field: "compare_at_price", Reason: "must be greater than price"}
	}
	v.compareAtPrice = &m
	return nil
}

func (v *ProductVariant) UpdateStock(quantity int) error {
	if quantity < 0 {
		return &shared.ValidationError{Field: "stock_quantity", Reason: "must not be negative"}
	}
	v.stockQuantity = quantity
	return nil
}

func (v *ProductVariant) ReduceStock(quantity int) error {
	if quantity <= 0 {
		return &shared.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if v.stockQuantity < quantity {
		return &shared.InsufficientError{Resource: "variant stock", Requested: int64(quantity), Available: int64(v.stockQuantity)}
	}
	v.stockQuantity -= quantity
	return nil
}

func (v *ProductVariant) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return &shared.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	v.stockQuantity += quantity
	return nil
}

// SetAttribute stores an option such as color=red. Keys are case-insensitive.
func (v *ProductVariant) SetAttribute(key, value string) error {
	k, err := shared.RequireText("attribute_key", key, 50)
	if err != nil {
		return err
	}
	val, err := shared.RequireText("attribute_value", value, 200)
	if err != nil {
		return err
	}
	v.attributes[strings.ToLower(k)] = val
	return nil
}

func (v *ProductVariant) RemoveAttribute(key string) {
	delete(v.attributes, strings.ToLower(strings.TrimSpace(key)))
}

func (v *ProductVariant) SetImage(url string) { v.imageURL = strings.TrimSpace(url) }

func (v *ProductVariant) SetDisplayOrder(order int) error {
	if order < 0 {
		return &shared.ValidationError{Field: "display_order", Reason: "must not be negative"}
	}
	v.displayOrder = order
	return nil
}

func (v *ProductVariant) Activate() { v.active = true }

func (v *ProductVariant) Deactivate() { v.active = false }

// VariantSnapshot is the persisted form of a ProductVariant.
type VariantSnapshot struct {
	ID             VariantID         `json:"id"`
	ProductID      ProductID         `json:"product_id"`
	Name           string            `json:"name"`
	SKU            Sku               `json:"sku"`
	Price          shared.Money      `json:"price"`
	CompareAtPrice *shared.Money     `json:"compare_at_price,omitempty"`
	StockQuantity  int               `json:"stock_quantity"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	ImageURL       string            `json:"image_url,omitempty"`
	DisplayOrder   int               `json:"display_order"`
	Active         bool              `json:"active"`
}

func (v *ProductVariant) Snapshot() VariantSnapshot {
	return VariantSnapshot{
		ID:             v.ID(),
		ProductID:      v.productID,
		Name:           v.name,
		SKU:            v.sku,
		Price:          v.price,
		CompareAtPrice: v.compareAtPrice,
		StockQuantity:  v.stockQuantity,
		Attributes:     maps.Clone(v.attributes),
		ImageURL:       v.imageURL,
		DisplayOrder:   v.displayOrder,
		Active:         v.active,
	}
}

func RestoreProductVariant(s VariantSnapshot) (*ProductVariant, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	attrs := maps.Clone(s.Attributes)
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &ProductVariant{
		Entity:         entity,
		productID:      s.ProductID,
		name:           s.Name,
		sku:            s.SKU,
		price:          s.Price,
		compareAtPrice: s.CompareAtPrice,
		stockQuantity:  s.StockQuantity,
		attributes:     attrs,
		imageURL:       s.ImageURL,
		displayOrder:   s.DisplayOrder,
		active:         s.Active,
	}, nil
}

// ProductImage is a picture attached to a product.
type ProductImage struct {
	shared.Entity[ProductImage]
	shared.Versioned

	productID    ProductID
	url          string
	altText      string
	displayOrder int
	primary      bool
}

func NewProductImage(productID ProductID, url, altText string, displayOrder int, primary bool) (*ProductImage, error) {
	if productID.IsZero() {
		return nil, &shared.ValidationError{Field: "product_id", Reason: "is required"}
	}
	u, err := shared.RequireText("url", url, 0)
	if err != nil {
		return nil, err
	}
	if displayOrder < 0 {
		return nil, &shared.ValidationError{Field: "display_order", Reason: "must not be negative"}
	}
	return &ProductImage{
		Entity:       shared.NewEntity[ProductImage](),
		productID:    productID,
		url:          u,
		altText:      strings.TrimSpace(altText),
		displayOrder: displayOrder,
		primary:      primary,
	}, nil
}

func (i *ProductImage) ProductID() ProductID { return i.productID }
func (i *ProductImage) URL() string { return i.url }
func (i *ProductImage) AltText() string { return i.altText }
func (i *ProductImage) DisplayOrder() int { return i.displayOrder }
func (i *ProductImage) IsPrimary() bool { return i.primary }

func (i *ProductImage) SetPrimary(primary bool) { i.primary = primary }

func (i *ProductImage) SetDisplayOrder(order int) error {
	if order < 0 {
		return &shared.ValidationError{Field: "display_order", Reason: "must not be negative"}
	}
	i.displayOrder = order
	return nil
}

func (i *ProductImage) UpdateAltText(alt string) { i.altText = strings.TrimSpace(alt) }

// ImageSnapshot is the persisted form of a ProductImage.
type ImageSnapshot struct {
	ID           ImageID   `json:"id"`
	ProductID    ProductID `json:"product_id"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text,omitempty"`
	DisplayOrder int       `json:"display_order"`
	Primary      bool      `json:"primary"`
}

func (i *ProductImage) Snapshot() ImageSnapshot {
	return ImageSnapshot{
		ID:           i.ID(),
		ProductID:    i.productID,
		URL:          i.url,
		AltText:      i.altText,
		DisplayOrder: i.displayOrder,
		Primary:      i.primary,
	}
}

func RestoreProductImage(s ImageSnapshot) (*ProductImage, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &ProductImage{
		Entity:       entity,
		productID:    s.ProductID,
		url:          s.URL,
		altText:      s.AltText,
		displayOrder: s.DisplayOrder,
		primary:      s.Primary,
	}, nil
}
