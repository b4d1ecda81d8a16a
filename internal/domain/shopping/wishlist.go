package shopping

import (
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/customer"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type (
	WishlistID     = shared.ID[Wishlist]
	WishlistItemID = shared.ID[WishlistItem]
)

// WishlistItem is a product a customer saved for later.
type WishlistItem struct {
	shared.Entity[WishlistItem]
	ProductID catalog.ProductID
	VariantID *catalog.VariantID
	AddedAt   time.Time
}

func (i WishlistItem) matches(productID catalog.ProductID, variantID *catalog.VariantID) bool {
	if i.ProductID != productID {
		return false
	}
	if variantID == nil || i.VariantID == nil {
		return variantID == nil && i.VariantID == nil
	}
	return *variantID == *i.VariantID
}

// Wishlist is a named list of saved products owned by a customer.
type Wishlist struct {
	shared.Entity[Wishlist]
	shared.Audit
	shared.Versioned

	clock      shared.Clock
	tenantID   shared.TenantID
	customerID customer.CustomerID
	name       string
	public     bool
	items      []WishlistItem
}

func NewWishlist(clock shared.Clock, tenantID shared.TenantID, customerID customer.CustomerID, name string, public bool) (*Wishlist, error) {
	if tenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	if customerID.IsZero() {
		return nil, &shared.ValidationError{Field: "customer_id", Reason: "is required"}
	}
	return &Wishlist{
		Entity:     shared.NewEntity[Wishlist](),
		clock:      shared.ClockOrSystem(clock),
		tenantID:   tenantID,
		customerID: customerID,
		name:       strings.TrimSpace(name),
		public:     public,
	}, nil
}

func (w *Wishlist) TenantID() shared.TenantID { return w.tenantID }
func (w *Wishlist) CustomerID() customer.CustomerID { return w.customerID }
func (w *Wishlist) Name() string { return w.name }
func (w *Wishlist) IsPublic() bool { return w.public }
func (w *Wishlist) Items() []WishlistItem { return slices.Clone(w.items) }
func (w *Wishlist) Count() int { return len(w.items) }
func (w *Wishlist) IsEmpty() bool { return len(w.items) == 0 }

func (w *Wishlist) ContainsProduct(productID catalog.ProductID, variantID *catalog.VariantID) bool {
	return slices.ContainsFunc(w.items, func(i WishlistItem) bool { return i.matches(productID, variantID) })
}

// AddItem saves a product. Saving the same product and variant twice fails.
func (w *Wishlist) AddItem(productID catalog.ProductID, variantID *catalog.VariantID) (WishlistItemID, error) {
	if productID.IsZero() {
		return WishlistItemID{}, &shared.ValidationError{Field: "product_id", Reason: "is required"}
	}
	if w.ContainsProduct(productID, variantID) {
		return WishlistItemID{}, &shared.DuplicateError{Entity: "wishlist item", Field: "product_id", Value: productID.String()}
	}
	item := WishlistItem{
		Entity:    shared.NewEntity[WishlistItem](),
		ProductID: productID,
		VariantID: variantID,
		AddedAt:   w.clock.UtcNow(),
	}
	w.items = append(w.items, item)
	return item.ID(), nil
}

func (w *Wishlist) RemoveItem(id WishlistItemID) error {
	idx := slices.IndexFunc(w.items, func(i WishlistItem) bool { return i.ID() == id })
	if idx < 0 {
		return &shared.NotFoundError{Entity: "wishlist item", ID: id.String()}
	}
	w.items = slices.Delete(w.items, idx, idx+1)
	return nil
}

// RemoveProduct drops the saved product if present.
func (w *Wishlist) RemoveProduct(productID catalog.ProductID, variantID *catalog.VariantID) {
	w.items = slices.DeleteFunc(w.items, func(i WishlistItem) bool { return i.matches(productID, variantID) })
}

func (w *Wishlist) Clear() { w.items = nil }

func (w *Wishlist) Rename(name string) { w.name = strings.TrimSpace(name) }

func (w *Wishlist) MakePublic() { w.public = true }

func (w *Wishlist) MakePrivate() { w.public = false }

// WishlistSnapshot is the persisted form of a Wishlist.
type WishlistSnapshot struct {
	ID         WishlistID             `json:"id"`
	TenantID   shared.TenantID        `json:"tenant_id"`
	CustomerID customer.CustomerID    `json:"customer_id"`
	Name       string                 `json:"name,omitempty"`
	Public     bool                   `json:"public"`
	Items      []WishlistItemSnapshot `json:"items"`
	Audit      shared.AuditRecord     `json:"audit"`
}

type WishlistItemSnapshot struct {
	ID        WishlistItemID     `json:"id"`
	ProductID catalog.ProductID  `json:"product_id"`
	VariantID *catalog.VariantID `json:"variant_id,omitempty"`
	AddedAt   time.Time          `json:"added_at"`
}

func (w *Wishlist) Snapshot() WishlistSnapshot {
	items := make([]WishlistItemSnapshot, len(w.items))
	for i, item := range w.items {
		items[i] = WishlistItemSnapshot{ID: item.ID(), ProductID: item.ProductID, VariantID: item.VariantID, AddedAt: item.AddedAt}
	}
	return WishlistSnapshot{
		ID:         w.ID(),
		TenantID:   w.tenantID,
		CustomerID: w.customerID,
		Name:       w.name,
		Public:     w.public,
		Items:      items,
		Audit:      w.Audit.Snapshot(),
	}
}

func RestoreWishlist(clock shared.Clock, s WishlistSnapshot) (*Wishlist, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	items := make([]WishlistItem, 0, len(s.Items))
	for _, is := range s.Items {
		ie, err := shared.EntityOf(is.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, WishlistItem{Entity: ie, ProductID: is.ProductID, VariantID: is.VariantID, AddedAt: is.AddedAt})
	}
	return &Wishlist{
		Entity:     entity,
		Audit:      shared.RestoreAudit(s.Audit),
		clock:      shared.ClockOrSystem(clock),
		tenantID:   s.TenantID,
		customerID: s.CustomerID,
		name:       s.Name,
		public:     s.Public,
		items:      items,
	}, nil
}
