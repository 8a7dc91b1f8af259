// Package cartstate is the client side view of a shopper's cart and
// wishlist. Local edits are applied optimistically and reconciled against the
// server's snapshots. State only changes through Reduce, and every network
// call it needs is returned as a Command for the caller to execute.
package cartstate

import (
	"maps"
	"strings"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
)

// Op names the optimistic mutation a Pending line is waiting on.
type Op int

const (
	OpAdd Op = iota + 1
	OpUpdate
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// Phase is one of Pending, Confirmed or RolledBack.
type Phase interface {
	phase()
}

// Pending marks a line edited locally whose mutation has not resolved yet.
type Pending struct {
	Seq uint64
	Op  Op
}

// Confirmed marks a line that matches the server snapshot taken after Seq.
type Confirmed struct {
	Seq uint64
}

// RolledBack marks a line restored to its last confirmed version because
// mutation Seq failed.
type RolledBack struct {
	Seq uint64
	Err error
}

func (Pending) phase()    {}
func (Confirmed) phase()  {}
func (RolledBack) phase() {}

// LineKey identifies a cart line. The server keeps at most one line per key.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

func (k LineKey) String() string {
	return k.ProductID + "|" + k.Size + "|" + k.Color
}

const TempIDPrefix = "temp_"

type Line struct {
	// ID is the server id, or a TempIDPrefix id until the first confirmation.
	ID        string
	Key       LineKey
	Product   contract.ProductSummary
	Quantity  int
	UnitPrice float64
	LineTotal float64
	AddedAt   time.Time
	Phase     Phase
}

func (l Line) IsTemporary() bool {
	return strings.HasPrefix(l.ID, TempIDPrefix)
}

func (l Line) Item() contract.CartItem {
	return contract.CartItem{
		ID:        l.ID,
		Product:   l.Product,
		Quantity:  l.Quantity,
		Size:      l.Key.Size,
		Color:     l.Key.Color,
		UnitPrice: l.UnitPrice,
		LineTotal: l.LineTotal,
		AddedAt:   l.AddedAt,
	}
}

type WishlistItem struct {
	Product contract.ProductSummary
	AddedAt time.Time
	Phase   Phase
}

// Notice is a transient message for the shopper, usually a rejected or
// rolled back mutation.
type Notice struct {
	Seq uint64
	Err error
}

func (n Notice) Message() string {
	return n.Err.Error()
}

// flight serializes the mutations of one cart line or wishlist entry: at most
// one command is active, the rest wait in queue.
type flight struct {
	wishlist bool
	key      LineKey
	active   uint64
	queue    []Command
}

// State is a value; Reduce never modifies the state it is given. The zero
// value is an empty cart and wishlist.
type State struct {
	Lines    []Line
	Summary  contract.CartSummary
	Wishlist []WishlistItem
	Notices  []Notice

	seq      uint64
	flights  map[string]*flight
	inflight map[uint64]string
	// applied holds, per flight key, the newest sequence whose server
	// snapshot has been applied
	applied        map[string]uint64
	confirmedLines map[LineKey]contract.CartItem
	confirmedWish  map[string]contract.WishlistEntry
}

func (s State) clone() State {
	next := s
	next.Lines = append([]Line(nil), s.Lines...)
	next.Wishlist = append([]WishlistItem(nil), s.Wishlist...)
	next.Notices = append([]Notice(nil), s.Notices...)

	next.flights = make(map[string]*flight, len(s.flights))
	for key, f := range s.flights {
		cp := *f
		cp.queue = append([]Command(nil), f.queue...)
		next.flights[key] = &cp
	}

	next.inflight = cloneMap(s.inflight)
	next.applied = cloneMap(s.applied)
	next.confirmedLines = cloneMap(s.confirmedLines)
	next.confirmedWish = cloneMap(s.confirmedWish)
	return next
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}

func (s State) Line(key LineKey) (Line, bool) {
	idx, ok := s.lineIndex(key)
	if !ok {
		return Line{}, false
	}
	return s.Lines[idx], true
}

func (s State) InWishlist(productID string) bool {
	_, ok := s.wishlistIndex(productID)
	return ok
}

// InFlight reports how many commands are awaiting a result.
func (s State) InFlight() int {
	return len(s.inflight)
}

func (s State) CartCount() int {
	return s.Summary.TotalItems
}

func (s State) lineIndex(key LineKey) (int, bool) {
	for i, line := range s.Lines {
		if line.Key == key {
			return i, true
		}
	}
	return -1, false
}

func (s State) wishlistIndex(productID string) (int, bool) {
	for i, item := range s.Wishlist {
		if item.Product.ID == productID {
			return i, true
		}
	}
	return -1, false
}

func cartFlight(key LineKey) string {
	return "cart:" + key.String()
}

func wishlistFlight(productID string) string {
	return "wishlist:" + productID
}

func itemKey(item contract.CartItem) LineKey {
	return LineKey{ProductID: item.Product.ID, Size: item.Size, Color: item.Color}
}

func lineFromItem(item contract.CartItem, phase Phase) Line {
	return Line{
		ID:        item.ID,
		Key:       itemKey(item),
		Product:   item.Product,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
		AddedAt:   item.AddedAt,
		Phase:     phase,
	}
}

func lineTotal(unitPrice float64, quantity int) float64 {
	return unitPrice * float64(quantity)
}

func summarize(lines []Line) contract.CartSummary {
	items := make([]contract.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, line.Item())
	}
	return contract.Summarize(items)
}
