package contract

type AddCartItemResponse struct {
	Envelope
	CartItem  CartItem `json:"cartItem"`
	CartCount int      `json:"cartCount"`
}

type UpdateCartItemResponse struct {
	Envelope
	CartItem CartItem `json:"cartItem"`
}

type RemoveCartItemResponse struct {
	Envelope
	CartCount int `json:"cartCount"`
}

type CartResponse struct {
	Envelope
	Cart Cart `json:"cart"`
}

type WishlistResponse struct {
	Envelope
	Wishlist []WishlistEntry `json:"wishlist"`
	Count    int             `json:"count"`
}

type MoveToCartResponse struct {
	Envelope
	CartItem  CartItem        `json:"cartItem"`
	CartCount int             `json:"cartCount"`
	Wishlist  []WishlistEntry `json:"wishlist"`
	Count     int             `json:"count"`
}

type ErrorResponse struct {
	Envelope
	Errors interface{} `json:"errors,omitempty"`
}

const (
	SyncConnected   = "connected"
	SyncCartUpdated = "cart_updated"
	SyncCartCleared = "cart_cleared"
)

// CartSyncMessage is pushed over the cart websocket whenever the stored cart changes.
type CartSyncMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Cart    *Cart  `json:"cart,omitempty"`
}

func NewWishlistResponse(entries []WishlistEntry) WishlistResponse {
	if entries == nil {
		entries = []WishlistEntry{}
	}
	return WishlistResponse{Wishlist: entries, Count: len(entries)}
}
