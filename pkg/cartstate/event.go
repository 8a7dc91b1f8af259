package cartstate

import (
	"time"

	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/oklog/ulid/v2"
)

type Event interface {
	event()
}

// AddRequested adds Quantity units of Product, merging into an existing line
// with the same size and color. Build it with AddItem.
type AddRequested struct {
	TempID   string
	Product  contract.ProductSummary
	Quantity int
	Size     string
	Color    string
	At       time.Time
}

// UpdateRequested sets the quantity of an existing line.
type UpdateRequested struct {
	Key      LineKey
	Quantity int
}

type RemoveRequested struct {
	Key LineKey
}

// WishlistToggled adds Product to the wishlist, or removes it when present.
type WishlistToggled struct {
	Product contract.ProductSummary
	At      time.Time
}

type CartLoaded struct {
	Cart contract.Cart
}

type WishlistLoaded struct {
	Wishlist []contract.WishlistEntry
}

// MutationSucceeded reports the result of the command with sequence Seq,
// along with the server state read after it. Item is the line returned by an
// add or update.
type MutationSucceeded struct {
	Seq      uint64
	Item     *contract.CartItem
	Cart     *contract.Cart
	Wishlist *contract.WishlistResponse
}

type MutationFailed struct {
	Seq uint64
	Err error
}

type NoticeDismissed struct {
	Seq uint64
}

func (AddRequested) event()      {}
func (UpdateRequested) event()   {}
func (RemoveRequested) event()   {}
func (WishlistToggled) event()   {}
func (CartLoaded) event()        {}
func (WishlistLoaded) event()    {}
func (MutationSucceeded) event() {}
func (MutationFailed) event()    {}
func (NoticeDismissed) event()   {}

func NewTempID() string {
	return TempIDPrefix + ulid.Make().String()
}

func AddItem(product contract.ProductSummary, quantity int, size string, color string) AddRequested {
	return AddRequested{
		TempID:   NewTempID(),
		Product:  product,
		Quantity: quantity,
		Size:     size,
		Color:    color,
		At:       time.Now(),
	}
}

func ToggleWishlist(product contract.ProductSummary) WishlistToggled {
	return WishlistToggled{Product: product, At: time.Now()}
}

// Command is a network call requested by Reduce. Its result must be fed back
// as MutationSucceeded or MutationFailed carrying the same sequence.
type Command interface {
	Sequence() uint64
	command()
}

type AddItemCommand struct {
	Seq     uint64
	Request contract.AddCartItemRequest
}

type UpdateItemCommand struct {
	Seq     uint64
	ItemID  string
	Request contract.UpdateCartItemRequest
}

type RemoveItemCommand struct {
	Seq    uint64
	ItemID string
}

type AddWishlistCommand struct {
	Seq     uint64
	Request contract.WishlistRequest
}

type RemoveWishlistCommand struct {
	Seq       uint64
	ProductID string
}

func (c AddItemCommand) Sequence() uint64        { return c.Seq }
func (c UpdateItemCommand) Sequence() uint64     { return c.Seq }
func (c RemoveItemCommand) Sequence() uint64     { return c.Seq }
func (c AddWishlistCommand) Sequence() uint64    { return c.Seq }
func (c RemoveWishlistCommand) Sequence() uint64 { return c.Seq }

func (AddItemCommand) command()        {}
func (UpdateItemCommand) command()     {}
func (RemoveItemCommand) command()     {}
func (AddWishlistCommand) command()    {}
func (RemoveWishlistCommand) command() {}
