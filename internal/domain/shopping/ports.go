package shopping

import (
	"context"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// CartRepository defines the persistence contract for shopping carts.
type CartRepository interface {
	shared.Repository[*ShoppingCart, CartID]
	// GetBySession returns the active cart opened by sessionID.
	GetBySession(ctx context.Context, sessionID string) (*ShoppingCart, error)
}

// WishlistRepository defines the persistence contract for wishlists.
type WishlistRepository interface {
	shared.Repository[*Wishlist, WishlistID]
}
