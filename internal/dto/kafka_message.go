package dto

import "time"

const (
	EventCartItemAdded       = "cart_item_added"
	EventCartItemUpdated     = "cart_item_updated"
	EventCartItemRemoved     = "cart_item_removed"
	EventCartCleared         = "cart_cleared"
	EventWishlistItemAdded   = "wishlist_item_added"
	EventWishlistItemRemoved = "wishlist_item_removed"
	EventWishlistCleared     = "wishlist_cleared"

	// published by the product command service
	EventProductAdded   = "add_product"
	EventProductUpdated = "update_product"
	EventProductDeleted = "delete_product"

	// stock changes, data is a list of products
	EventProductStockDecreased = "decrease_product_quantity"
	EventProductStockRestored  = "restore_product_stock_es"
)

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type CartEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id,omitempty"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Size       string    `json:"size,omitempty"`
	Color      string    `json:"color,omitempty"`
	CartCount  int       `json:"cart_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

type WishlistEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id,omitempty"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductEvent is the subset of the product command service payload the
// catalogue cache cares about.
type ProductEvent struct {
	ID string `json:"id"`
}
