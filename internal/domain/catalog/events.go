package catalog

import "github.com/neomorfeo/nexcart/internal/domain/shared"

// ProductCreated is raised when a product is first defined.
type ProductCreated struct {
	shared.EventMeta
	Name string `json:"name"`
	SKU  Sku    `json:"sku"`
}

func (ProductCreated) EventName() string { return "catalog.product_created" }

// ProductPriceChanged is raised on every price update.
type ProductPriceChanged struct {
	shared.EventMeta
	OldPrice shared.Money `json:"old_price"`
	NewPrice shared.Money `json:"new_price"`
}

func (ProductPriceChanged) EventName() string { return "catalog.product_price_changed" }

// ProductInventoryUpdated is raised on every stock mutation.
type ProductInventoryUpdated struct {
	shared.EventMeta
	OldQuantity int `json:"old_quantity"`
	NewQuantity int `json:"new_quantity"`
}

func (ProductInventoryUpdated) EventName() string { return "catalog.product_inventory_updated" }

// ProductStatusChanged is raised whenever the lifecycle status moves.
type ProductStatusChanged struct {
	shared.EventMeta
	From ProductStatus `json:"from"`
	To   ProductStatus `json:"to"`
}

func (ProductStatusChanged) EventName() string { return "catalog.product_status_changed" }
