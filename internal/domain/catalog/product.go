package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type (
	ProductID  = shared.ID[Product]
	CategoryID = shared.ID[CategoryRef]
	BrandID    = shared.ID[Brand]
)

// CategoryRef types category identifiers. A category holds its parent's ID,
// so the ID cannot be parameterised by Category itself.
type CategoryRef struct{}

// ProductType classifies what is being sold.
type ProductType string

const (
	TypePhysical     ProductType = "physical"
	TypeDigital      ProductType = "digital"
	TypeService      ProductType = "service"
	TypeFood         ProductType = "food"
	TypePrescription ProductType = "prescription"
)

func (t ProductType) Valid() bool {
	switch t {
	case TypePhysical, TypeDigital, TypeService, TypeFood, TypePrescription:
		return true
	}
	return false
}

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	StatusDraft        ProductStatus = "draft"
	StatusActive       ProductStatus = "active"
	StatusInactive     ProductStatus = "inactive"
	StatusOutOfStock   ProductStatus = "out_of_stock"
	StatusDiscontinued ProductStatus = "discontinued"
)

// ProductEvent triggers a product status change.
type ProductEvent string

const (
	EventActivate    ProductEvent = "activate"
	EventDeactivate  ProductEvent = "deactivate"
	EventDiscontinue ProductEvent = "discontinue"
	EventStockOut    ProductEvent = "stock_out"
	EventRestock     ProductEvent = "restock"
)

// ProductTransitions is the product lifecycle. Discontinued has no outgoing
// transitions.
var ProductTransitions = []shared.Transition[ProductStatus, ProductEvent]{
	{Event: EventActivate, Src: StatusDraft, Dst: StatusActive},
	{Event: EventActivate, Src: StatusInactive, Dst: StatusActive},
	{Event: EventActivate, Src: StatusOutOfStock, Dst: StatusActive},
	{Event: EventDeactivate, Src: StatusDraft, Dst: StatusInactive},
	{Event: EventDeactivate, Src: StatusActive, Dst: StatusInactive},
	{Event: EventDeactivate, Src: StatusOutOfStock, Dst: StatusInactive},
	{Event: EventDiscontinue, Src: StatusDraft, Dst: StatusDiscontinued},
	{Event: EventDiscontinue, Src: StatusActive, Dst: StatusDiscontinued},
	{Event: EventDiscontinue, Src: StatusInactive, Dst: StatusDiscontinued},
	{Event: EventDiscontinue, Src: StatusOutOfStock, Dst: StatusDiscontinued},
	{Event: EventStockOut, Src: StatusActive, Dst: StatusOutOfStock},
	{Event: EventRestock, Src: StatusOutOfStock, Dst: StatusActive},
}

var productLifecycle = shared.NewLifecycle(ProductTransitions)

// StockStatus summarizes availability for display.
type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	LowStock   StockStatus = "low_stock"
	OutOfStock StockStatus = "out_of_stock"
)

const (
	maxProductNameLength     = 200
	defaultLowStockThreshold = 10
)

// Product is a sellable item of a tenant's catalog.
type Product struct {
	shared.Entity[Product]
	shared.EventBuffer
	shared.Audit
	shared.SoftDelete
	shared.Versioned

	clock             shared.Clock
	tenantID          shared.TenantID
	name              string
	description       string
	sku               Sku
	price             shared.Money
	compareAtPrice    *shared.Money
	cost              shared.Money
	productType       ProductType
	status            ProductStatus
	categoryID        CategoryID
	brandID           *BrandID
	stockQuantity     int
	lowStockThreshold int
	trackInventory    bool
	weight            *Weight
	dimensions        *Dimensions
	rating            Rating
	featured          bool
}

// NewProductParams are the inputs of NewProduct.
type NewProductParams struct {
	TenantID    shared.TenantID
	Name        string
	Description string
	SKU         string
	Price       shared.Money
	Cost        shared.Money
	Type        ProductType
	CategoryID  CategoryID
}

// NewProduct validates p and returns a draft product.
func NewProduct(clock shared.Clock, p NewProductParams) (*Product, error) {
	if p.TenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	name, err := shared.RequireText("name", p.Name, maxProductNameLength)
	if err != nil {
		return nil, err
	}
	description, err := shared.RequireText("description", p.Description, 0)
	if err != nil {
		return nil, err
	}
	sku, err := ParseSku(p.SKU)
	if err != nil {
		return nil, err
	}
	if err := validatePriceAndCost(p.Price, p.Cost); err != nil {
		return nil, err
	}
	if !p.Type.Valid() {
		return nil, &shared.ValidationError{Field: "type", Reason: "unknown product type"}
	}
	if p.CategoryID.IsZero() {
		return nil, &shared.ValidationError{Field: "category_id", Reason: "is required"}
	}

	product := &Product{
		Entity:            shared.NewEntity[Product](),
		clock:             shared.ClockOrSystem(clock),
		tenantID:          p.TenantID,
		name:              name,
		description:       description,
		sku:               sku,
		price:             p.Price,
		cost:              p.Cost,
		productType:       p.Type,
		status:            StatusDraft,
		categoryID:        p.CategoryID,
		lowStockThreshold: defaultLowStockThreshold,
		trackInventory:    true,
		rating:            EmptyRating(),
	}
	product.AddEvent(ProductCreated{EventMeta: product.meta(), Name: name, SKU: sku})
	return product, nil
}

func validatePriceAndCost(price, cost shared.Money) error {
	if !price.IsPositive() {
		return &shared.ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	above, err := cost.GreaterThan(price)
	if err != nil {
		return err
	}
	if above {
		return &shared.ValidationError{Field: "cost", Reason: "must not exceed price"}
	}
	return nil
}

func (p *Product) meta() shared.EventMeta {
	return shared.NewEventMeta(p.clock.UtcNow(), p.ID().String(), p.tenantID.String())
}

func (p *Product) TenantID() shared.TenantID { return p.tenantID }
func (p *Product) Name() string { return p.name }
func (p *Product) Description() string { return p.description }
func (p *Product) SKU() Sku { return p.sku }
func (p *Product) Price() shared.Money { return p.price }
func (p *Product) Cost() shared.Money { return p.cost }
func (p *Product) Type() ProductType { return p.productType }
func (p *Product) Status() ProductStatus { return p.status }
func (p *Product) CategoryID() CategoryID { return p.categoryID }
func (p *Product) StockQuantity() int { return p.stockQuantity }
func (p *Product) LowStockThreshold() int { return p.lowStockThreshold }
func (p *Product) TracksInventory() bool { return p.trackInventory }
func (p *Product) Rating() Rating { return p.rating }
func (p *Product) IsFeatured() bool { return p.featured }

func (p *Product) CompareAtPrice() (shared.Money, bool) {
	if p.compareAtPrice == nil {
		return shared.Money{}, false
	}
	return *p.compareAtPrice, true
}

func (p *Product) BrandID() (BrandID, bool) {
	if p.brandID == nil {
		return BrandID{}, false
	}
	return *p.brandID, true
}

func (p *Product) Weight() (Weight, bool) {
	if p.weight == nil {
		return Weight{}, false
	}
	return *p.weight, true
}

func (p *Product) Dimensions() (Dimensions, bool) {
	if p.dimensions == nil {
		return Dimensions{}, false
	}
	return *p.dimensions, true
}

// UpdateDetails renames the product and replaces its description.
func (p *Product) UpdateDetails(name, description string) error {
	n, err := shared.RequireText("name", name, maxProductNameLength)
	if err != nil {
		return err
	}
	d, err := shared.RequireText("description", description, 0)
	if err != nil {
		return err
	}
	p.name, p.description = n, d
	return nil
}

// UpdatePrice sets a new selling price, which may not fall below cost.
func (p *Product) UpdatePrice(price shared.Money) error {
	if err := validatePriceAndCost(price, p.cost); err != nil {
		return err
	}
	old := p.price
	p.price = price
	p.AddEvent(ProductPriceChanged{EventMeta: p.meta(), OldPrice: old, NewPrice: price})
	return nil
}

// UpdateCost sets a new unit cost, which may not exceed the price.
func (p *Product) UpdateCost(cost shared.Money) error {
	if err := validatePriceAndCost(p.price, cost); err != nil {
		return err
	}
	p.cost = cost
	return nil
}

// SetCompareAtPrice sets the reference price shown as crossed out.
func (p *Product) SetCompareAtPrice(m shared.Money) error {
	above, err := m.GreaterThan(p.price)
	if err != nil {
		return err
	}
	if !above {
		return &shared.ValidationError{Field: "compare_at_price", Reason: "must be greater than price"}
	}
	p.compareAtPrice = &m
	return nil
}

func (p *Product) RemoveCompareAtPrice() { p.compareAtPrice = nil }

// UpdateStock sets the on-hand quantity and re-derives the stock status.
func (p *Product) UpdateStock(quantity int) error {
	if !p.trackInventory {
		return &shared.StateError{Entity: "product", Action: "update stock", Reason: "inventory is not tracked"}
	}
	if quantity < 0 {
		return &shared.ValidationError{Field: "stock_quantity", Reason: "must not be negative"}
	}
	old := p.stockQuantity
	p.stockQuantity = quantity
	p.AddEvent(ProductInventoryUpdated{EventMeta: p.meta(), OldQuantity: old, NewQuantity: quantity})
	return p.syncStockStatus()
}

// ReduceStock removes quantity units. It does nothing for untracked products.
func (p *Product) ReduceStock(quantity int) error {
	if !p.trackInventory {
		return nil
	}
	if quantity <= 0 {
		return &shared.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if p.stockQuantity < quantity {
		return &shared.InsufficientError{Resource: "stock", Requested: int64(quantity), Available: int64(p.stockQuantity)}
	}
	return p.UpdateStock(p.stockQuantity - quantity)
}

// IncreaseStock adds quantity units. It does nothing for untracked products.
func (p *Product) IncreaseStock(quantity int) error {
	if !p.trackInventory {
		return nil
	}
	if quantity <= 0 {
		return &shared.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	return p.UpdateStock(p.stockQuantity + quantity)
}

// SetInventoryTracking turns stock tracking on or off. An out of stock product
// that stops being tracked is back on sale.
func (p *Product) SetInventoryTracking(track bool) error {
	p.trackInventory = track
	return p.syncStockStatus()
}

func (p *Product) SetLowStockThreshold(n int) error {
	if n < 0 {
		return &shared.ValidationError{Field: "low_stock_threshold", Reason: "must not be negative"}
	}
	p.lowStockThreshold = n
	return nil
}

// Activate publishes the product. Tracked products without stock go straight
// to out of stock.
func (p *Product) Activate() error {
	if err := p.fire(EventActivate); err != nil {
		return err
	}
	return p.syncStockStatus()
}

func (p *Product) Deactivate() error {
	return p.fire(EventDeactivate)
}

// Discontinue retires the product for good. Repeating it is a no-op.
func (p *Product) Discontinue() error {
	if p.status == StatusDiscontinued {
		return nil
	}
	return p.fire(EventDiscontinue)
}

func (p *Product) fire(event ProductEvent) error {
	next, err := productLifecycle.Apply(p.status, event)
	if err != nil {
		return err
	}
	prev := p.status
	p.status = next
	p.AddEvent(ProductStatusChanged{EventMeta: p.meta(), From: prev, To: next})
	return nil
}

// syncStockStatus applies the automatic Active/OutOfStock transitions.
func (p *Product) syncStockStatus() error {
	switch {
	case p.status == StatusActive && p.trackInventory && p.stockQuantity == 0:
		return p.fire(EventStockOut)
	case p.status == StatusOutOfStock && (p.stockQuantity > 0 || !p.trackInventory):
		return p.fire(EventRestock)
	}
	return nil
}

func (p *Product) SetFeatured(featured bool) { p.featured = featured }

func (p *Product) SetWeight(w Weight) { p.weight = &w }

func (p *Product) ClearWeight() { p.weight = nil }

func (p *Product) SetDimensions(d Dimensions) { p.dimensions = &d }

func (p *Product) ClearDimensions() { p.dimensions = nil }

func (p *Product) SetBrand(id BrandID) error {
	if id.IsZero() {
		return &shared.ValidationError{Field: "brand_id", Reason: "is required"}
	}
	p.brandID = &id
	return nil
}

func (p *Product) ClearBrand() { p.brandID = nil }

func (p *Product) UpdateCategory(id CategoryID) error {
	if id.IsZero() {
		return &shared.ValidationError{Field: "category_id", Reason: "is required"}
	}
	p.categoryID = id
	return nil
}

// AddReview records a customer review of 1 to 5 stars.
func (p *Product) AddReview(stars int) error {
	r, err := p.rating.AddReview(stars)
	if err != nil {
		return err
	}
	p.rating = r
	return nil
}

func (p *Product) StockStatus() StockStatus {
	switch {
	case !p.trackInventory:
		return InStock
	case p.stockQuantity == 0:
		return OutOfStock
	case p.stockQuantity <= p.lowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

func (p *Product) IsInStock() bool {
	return !p.trackInventory || p.stockQuantity > 0
}

// Profit is price minus cost.
func (p *Product) Profit() (shared.Money, error) {
	return p.price.Subtract(p.cost)
}

// ProfitMargin is the profit as a percentage of price, rounded to two places.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.price.IsZero() {
		return decimal.Zero
	}
	profit := p.price.Amount().Sub(p.cost.Amount())
	return profit.Div(p.price.Amount()).Mul(decimal.NewFromInt(100)).Round(2)
}

// ProductSnapshot is the persisted form of a Product.
type ProductSnapshot struct {
	ID                ProductID             `json:"id"`
	TenantID          shared.TenantID       `json:"tenant_id"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	SKU               Sku                   `json:"sku"`
	Price             shared.Money          `json:"price"`
	CompareAtPrice    *shared.Money         `json:"compare_at_price,omitempty"`
	Cost              shared.Money          `json:"cost"`
	Type              ProductType           `json:"type"`
	Status            ProductStatus         `json:"status"`
	CategoryID        CategoryID            `json:"category_id"`
	BrandID           *BrandID              `json:"brand_id,omitempty"`
	StockQuantity     int                   `json:"stock_quantity"`
	LowStockThreshold int                   `json:"low_stock_threshold"`
	TrackInventory    bool                  `json:"track_inventory"`
	Weight            *Weight               `json:"weight,omitempty"`
	Dimensions        *Dimensions           `json:"dimensions,omitempty"`
	Rating            Rating                `json:"rating"`
	Featured          bool                  `json:"featured"`
	Audit             shared.AuditRecord    `json:"audit"`
	Deletion          shared.DeletionRecord `json:"deletion"`
}

func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:                p.ID(),
		TenantID:          p.tenantID,
		Name:              p.name,
		Description:       p.description,
		SKU:               p.sku,
		Price:             p.price,
		CompareAtPrice:    p.compareAtPrice,
		Cost:              p.cost,
		Type:              p.productType,
		Status:            p.status,
		CategoryID:        p.categoryID,
		BrandID:           p.brandID,
		StockQuantity:     p.stockQuantity,
		LowStockThreshold: p.lowStockThreshold,
		TrackInventory:    p.trackInventory,
		Weight:            p.weight,
		Dimensions:        p.dimensions,
		Rating:            p.rating,
		Featured:          p.featured,
		Audit:             p.Audit.Snapshot(),
		Deletion:          p.SoftDelete.Snapshot(),
	}
}

// RestoreProduct rebuilds a product from its persisted form without raising
// events.
func RestoreProduct(clock shared.Clock, s ProductSnapshot) (*Product, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	return &Product{
		Entity:            entity,
		Audit:             shared.RestoreAudit(s.Audit),
		SoftDelete:        shared.RestoreSoftDelete(s.Deletion),
		clock:             shared.ClockOrSystem(clock),
		tenantID:          s.TenantID,
		name:              s.Name,
		description:       s.Description,
		sku:               s.SKU,
		price:             s.Price,
		compareAtPrice:    s.CompareAtPrice,
		cost:              s.Cost,
		productType:       s.Type,
		status:            s.Status,
		categoryID:        s.CategoryID,
		brandID:           s.BrandID,
		stockQuantity:     s.StockQuantity,
		lowStockThreshold: s.LowStockThreshold,
		trackInventory:    s.TrackInventory,
		weight:            s.Weight,
		dimensions:        s.Dimensions,
		rating:            s.Rating,
		featured:          s.Featured,
	}, nil
}
