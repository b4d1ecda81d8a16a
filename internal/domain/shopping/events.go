package shopping

import (
	"github.com/neomorfeo/nexcart/internal/domain/catalog"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

type CartItemAdded struct {
	shared.EventMeta
	ItemID    CartItemID        `json:"item_id"`
	ProductID catalog.ProductID `json:"product_id"`
	Quantity  int               `json:"quantity"`
}

func (CartItemAdded) EventName() string { return "shopping.cart_item_added" }

type CartItemQuantityChanged struct {
	shared.EventMeta
	ItemID      CartItemID `json:"item_id"`
	OldQuantity int        `json:"old_quantity"`
	NewQuantity int        `json:"new_quantity"`
}

func (CartItemQuantityChanged) EventName() string { return "shopping.cart_item_quantity_changed" }

type CartItemRemoved struct {
	shared.EventMeta
	ItemID    CartItemID        `json:"item_id"`
	ProductID catalog.ProductID `json:"product_id"`
}

func (CartItemRemoved) EventName() string { return "shopping.cart_item_removed" }

type CartCleared struct {
	shared.EventMeta
}

func (CartCleared) EventName() string { return "shopping.cart_cleared" }

// CartAbandonedEvent carries the contact email, if known, for recovery mailings.
type CartAbandonedEvent struct {
	shared.EventMeta
	CustomerEmail string `json:"customer_email,omitempty"`
}

func (CartAbandonedEvent) EventName() string { return "shopping.cart_abandoned" }

type CartConvertedEvent struct {
	shared.EventMeta
}

func (CartConvertedEvent) EventName() string { return "shopping.cart_converted" }

type CartExpiredEvent struct {
	shared.EventMeta
}

func (CartExpiredEvent) EventName() string { return "shopping.cart_expired" }
