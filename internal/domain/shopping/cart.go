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
	CartID     = shared.ID[ShoppingCart]
	CartItemID = shared.ID[CartItem]
)

// CartStatus is the lifecycle state of a shopping cart.
type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartAbandoned CartStatus = "abandoned"
	CartConverted CartStatus = "converted"
	CartExpired   CartStatus = "expired"
)

// CartEvent triggers a cart status change.
type CartEvent string

const (
	EventAbandon CartEvent = "abandon"
	EventConvert CartEvent = "convert"
	EventExpire  CartEvent = "expire"
)

// CartTransitions is the cart lifecycle. Converted and Expired are terminal.
var CartTransitions = []shared.Transition[CartStatus, CartEvent]{
	{Event: EventAbandon, Src: CartActive, Dst: CartAbandoned},
	{Event: EventConvert, Src: CartActive, Dst: CartConverted},
	{Event: EventConvert, Src: CartAbandoned, Dst: CartConverted},
	{Event: EventExpire, Src: CartActive, Dst: CartExpired},
	{Event: EventExpire, Src: CartAbandoned, Dst: CartExpired},
}

var cartLifecycle = shared.NewLifecycle(CartTransitions)

// DefaultCartLifetime is how long a new cart stays open.
const DefaultCartLifetime = 30 * 24 * time.Hour

// ShoppingCart holds the lines a visitor intends to buy. It is keyed by the
// visitor's session and may later be assigned to a customer.
type ShoppingCart struct {
	shared.Entity[ShoppingCart]
	shared.EventBuffer
	shared.Audit
	shared.Versioned

	clock         shared.Clock
	tenantID      shared.TenantID
	sessionID     string
	customerID    *customer.CustomerID
	customerEmail string
	status        CartStatus
	items         []*CartItem
	abandonedAt   *time.Time
	convertedAt   *time.Time
	expiresAt     time.Time
}

// NewCart opens an empty active cart for sessionID.
func NewCart(clock shared.Clock, tenantID shared.TenantID, sessionID string) (*ShoppingCart, error) {
	if tenantID.IsZero() {
		return nil, &shared.ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	session, err := shared.RequireText("session_id", sessionID, 0)
	if err != nil {
		return nil, err
	}
	clock = shared.ClockOrSystem(clock)
	return &ShoppingCart{
		Entity:    shared.NewEntity[ShoppingCart](),
		clock:     clock,
		tenantID:  tenantID,
		sessionID: session,
		status:    CartActive,
		expiresAt: clock.UtcNow().Add(DefaultCartLifetime),
	}, nil
}

func (c *ShoppingCart) meta() shared.EventMeta {
	return shared.NewEventMeta(c.clock.UtcNow(), c.ID().String(), c.tenantID.String())
}

func (c *ShoppingCart) TenantID() shared.TenantID { return c.tenantID }
func (c *ShoppingCart) SessionID() string { return c.sessionID }
func (c *ShoppingCart) CustomerEmail() string { return c.customerEmail }
func (c *ShoppingCart) Status() CartStatus { return c.status }
func (c *ShoppingCart) ExpiresAt() time.Time { return c.expiresAt }
func (c *ShoppingCart) Items() []*CartItem { return slices.Clone(c.items) }
func (c *ShoppingCart) ItemCount() int { return len(c.items) }
func (c *ShoppingCart) IsEmpty() bool { return len(c.items) == 0 }

func (c *ShoppingCart) CustomerID() (customer.CustomerID, bool) {
	if c.customerID == nil {
		return customer.CustomerID{}, false
	}
	return *c.customerID, true
}

// IsExpired reports whether the cart is past its expiry time.
func (c *ShoppingCart) IsExpired() bool {
	return c.clock.UtcNow().After(c.expiresAt)
}

// Total is the sum of line subtotals in the currency of the first line. An
// empty cart totals zero in the default currency.
func (c *ShoppingCart) Total() shared.Money {
	if len(c.items) == 0 {
		m, _ := shared.ZeroMoney(shared.DefaultCurrency)
		return m
	}
	subtotals := make([]shared.Money, len(c.items))
	for i, item := range c.items {
		subtotals[i] = item.Subtotal()
	}
	total, _ := shared.SumMoney(c.items[0].unitPrice.Currency(), subtotals...)
	return total
}

// TotalItems is the number of units across all lines.
func (c *ShoppingCart) TotalItems() int {
	n := 0
	for _, item := range c.items {
		n += item.quantity
	}
	return n
}

func (c *ShoppingCart) Item(id CartItemID) (*CartItem, error) {
	for _, item := range c.items {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, &shared.NotFoundError{Entity: "cart item", ID: id.String()}
}

func (c *ShoppingCart) findLine(productID catalog.ProductID, variantID *catalog.VariantID) *CartItem {
	for _, item := range c.items {
		if item.matches(productID, variantID) {
			return item
		}
	}
	return nil
}

func (c *ShoppingCart) ContainsProduct(productID catalog.ProductID, variantID *catalog.VariantID) bool {
	return c.findLine(productID, variantID) != nil
}

// QuantityOf returns the units of productID in the cart, or zero.
func (c *ShoppingCart) QuantityOf(productID catalog.ProductID, variantID *catalog.VariantID) int {
	if item := c.findLine(productID, variantID); item != nil {
		return item.quantity
	}
	return 0
}

func (c *ShoppingCart) requireOpen(action string) error {
	if c.status != CartActive {
		return &shared.StateError{Entity: "cart", Action: action, Reason: "cart is " + string(c.status)}
	}
	return nil
}

// AddItem puts line in the cart. A line for the same product and variant is
// merged by adding quantities.
func (c *ShoppingCart) AddItem(line NewCartLine) (*CartItem, error) {
	if err := c.requireOpen("add item"); err != nil {
		return nil, err
	}
	if c.IsExpired() {
		return nil, &shared.StateError{Entity: "cart", Action: "add item", Reason: "cart has expired"}
	}
	if len(c.items) > 0 {
		if cur := c.items[0].unitPrice.Currency(); cur != line.UnitPrice.Currency() {
			return nil, &shared.CurrencyMismatchError{Op: "add item", Left: cur, Right: line.UnitPrice.Currency()}
		}
	}

	item := c.findLine(line.ProductID, line.VariantID)
	if item != nil {
		if err := item.IncreaseQuantity(line.Quantity); err != nil {
			return nil, err
		}
	} else {
		created, err := newCartItem(line, c.clock.UtcNow())
		if err != nil {
			return nil, err
		}
		c.items = append(c.items, created)
		item = created
	}
	c.AddEvent(CartItemAdded{
		EventMeta: c.meta(),
		ItemID:    item.ID(),
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	})
	return item, nil
}

// IncreaseItemQuantity adds n units to an existing line.
func (c *ShoppingCart) IncreaseItemQuantity(id CartItemID, n int) error {
	if err := c.requireOpen("change quantity"); err != nil {
		return err
	}
	item, err := c.Item(id)
	if err != nil {
		return err
	}
	old := item.quantity
	if err := item.IncreaseQuantity(n); err != nil {
		return err
	}
	c.AddEvent(CartItemQuantityChanged{EventMeta: c.meta(), ItemID: id, OldQuantity: old, NewQuantity: item.quantity})
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (c *ShoppingCart) UpdateItemQuantity(id CartItemID, quantity int) error {
	if err := c.requireOpen("change quantity"); err != nil {
		return err
	}
	item, err := c.Item(id)
	if err != nil {
		return err
	}
	old := item.quantity
	if err := item.UpdateQuantity(quantity); err != nil {
		return err
	}
	c.AddEvent(CartItemQuantityChanged{EventMeta: c.meta(), ItemID: id, OldQuantity: old, NewQuantity: quantity})
	return nil
}

func (c *ShoppingCart) RemoveItem(id CartItemID) error {
	if err := c.requireOpen("remove item"); err != nil {
		return err
	}
	idx := slices.IndexFunc(c.items, func(i *CartItem) bool { return i.ID() == id })
	if idx < 0 {
		return &shared.NotFoundError{Entity: "cart item", ID: id.String()}
	}
	removed := c.items[idx]
	c.items = slices.Delete(c.items, idx, idx+1)
	c.AddEvent(CartItemRemoved{EventMeta: c.meta(), ItemID: id, ProductID: removed.productID})
	return nil
}

// RemoveProduct drops the line for productID if there is one.
func (c *ShoppingCart) RemoveProduct(productID catalog.ProductID, variantID *catalog.VariantID) error {
	item := c.findLine(productID, variantID)
	if item == nil {
		return nil
	}
	return c.RemoveItem(item.ID())
}

// Clear empties the cart. Clearing an empty cart does nothing.
func (c *ShoppingCart) Clear() {
	if len(c.items) == 0 {
		return
	}
	c.items = nil
	c.AddEvent(CartCleared{EventMeta: c.meta()})
}

func (c *ShoppingCart) AssignToCustomer(id customer.CustomerID, email string) error {
	if id.IsZero() {
		return &shared.ValidationError{Field: "customer_id", Reason: "is required"}
	}
	c.customerID = &id
	c.customerEmail = strings.TrimSpace(email)
	return nil
}

func (c *ShoppingCart) fire(event CartEvent) error {
	next, err := cartLifecycle.Apply(c.status, event)
	if err != nil {
		return err
	}
	c.status = next
	return nil
}

// MarkAsAbandoned flags an active cart as left behind.
func (c *ShoppingCart) MarkAsAbandoned() error {
	if c.status == CartAbandoned {
		return nil
	}
	if err := c.fire(EventAbandon); err != nil {
		return err
	}
	now := c.clock.UtcNow()
	c.abandonedAt = &now
	c.AddEvent(CartAbandonedEvent{EventMeta: c.meta(), CustomerEmail: c.customerEmail})
	return nil
}

// MarkAsConverted closes the cart once it became an order.
func (c *ShoppingCart) MarkAsConverted() error {
	if c.status == CartConverted {
		return nil
	}
	if err := c.fire(EventConvert); err != nil {
		return err
	}
	now := c.clock.UtcNow()
	c.convertedAt = &now
	c.AddEvent(CartConvertedEvent{EventMeta: c.meta()})
	return nil
}

func (c *ShoppingCart) MarkAsExpired() error {
	if c.status == CartExpired {
		return nil
	}
	if err := c.fire(EventExpire); err != nil {
		return err
	}
	c.AddEvent(CartExpiredEvent{EventMeta: c.meta()})
	return nil
}

// ExtendExpiration moves the expiry to days from now.
func (c *ShoppingCart) ExtendExpiration(days int) error {
	if days <= 0 {
		return &shared.ValidationError{Field: "days", Reason: "must be greater than zero"}
	}
	c.expiresAt = c.clock.UtcNow().AddDate(0, 0, days)
	return nil
}

// CartSnapshot is the persisted form of a ShoppingCart.
type CartSnapshot struct {
	ID            CartID               `json:"id"`
	TenantID      shared.TenantID      `json:"tenant_id"`
	SessionID     string               `json:"session_id"`
	CustomerID    *customer.CustomerID `json:"customer_id,omitempty"`
	CustomerEmail string               `json:"customer_email,omitempty"`
	Status        CartStatus           `json:"status"`
	Items         []CartItemSnapshot   `json:"items"`
	AbandonedAt   *time.Time           `json:"abandoned_at,omitempty"`
	ConvertedAt   *time.Time           `json:"converted_at,omitempty"`
	ExpiresAt     time.Time            `json:"expires_at"`
	Audit         shared.AuditRecord   `json:"audit"`
}

func (c *ShoppingCart) Snapshot() CartSnapshot {
	items := make([]CartItemSnapshot, len(c.items))
	for i, item := range c.items {
		items[i] = item.snapshot()
	}
	return CartSnapshot{
		ID:            c.ID(),
		TenantID:      c.tenantID,
		SessionID:     c.sessionID,
		CustomerID:    c.customerID,
		CustomerEmail: c.customerEmail,
		Status:        c.status,
		Items:         items,
		AbandonedAt:   c.abandonedAt,
		ConvertedAt:   c.convertedAt,
		ExpiresAt:     c.expiresAt,
		Audit:         c.Audit.Snapshot(),
	}
}

func RestoreCart(clock shared.Clock, s CartSnapshot) (*ShoppingCart, error) {
	entity, err := shared.EntityOf(s.ID)
	if err != nil {
		return nil, err
	}
	items := make([]*CartItem, 0, len(s.Items))
	for _, is := range s.Items {
		item, err := restoreCartItem(is)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ShoppingCart{
		Entity:        entity,
		Audit:         shared.RestoreAudit(s.Audit),
		clock:         shared.ClockOrSystem(clock),
		tenantID:      s.TenantID,
		sessionID:     s.SessionID,
		customerID:    s.CustomerID,
		customerEmail: s.CustomerEmail,
		status:        s.Status,
		items:         items,
		abandonedAt:   s.AbandonedAt,
		convertedAt:   s.ConvertedAt,
		expiresAt:     s.ExpiresAt,
	}, nil
}
