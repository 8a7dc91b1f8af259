package cartstate

import (
	"slices"
	"strings"

	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
)

// Reduce applies ev to s and returns the next state with the commands to
// execute.
//
// Mutations on the same line key (or wishlist product) run one at a time:
// later edits show up locally right away but their commands are held until
// the earlier one resolves. A failure restores the key to its last server
// confirmed version and drops whatever was still queued for it. Results for
// a sequence that is not currently in flight are ignored.
func Reduce(s State, ev Event) (State, []Command) {
	next := s.clone()

	var cmds []Command
	switch e := ev.(type) {
	case AddRequested:
		cmds = next.addItem(e)
	case UpdateRequested:
		cmds = next.updateItem(e)
	case RemoveRequested:
		cmds = next.removeItem(e)
	case WishlistToggled:
		cmds = next.toggleWishlist(e)
	case CartLoaded:
		next.applyCart(next.nextSeq(), e.Cart, "")
	case WishlistLoaded:
		next.applyWishlist(next.nextSeq(), e.Wishlist, "")
	case MutationSucceeded:
		cmds = next.succeed(e)
	case MutationFailed:
		next.fail(e.Seq, e.Err)
	case NoticeDismissed:
		next.Notices = slices.DeleteFunc(next.Notices, func(n Notice) bool {
			return n.Seq == e.Seq
		})
	}

	next.Summary = summarize(next.Lines)
	return next, cmds
}

func (s *State) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *State) notify(err error) {
	s.Notices = append(s.Notices, Notice{Seq: s.nextSeq(), Err: err})
}

func (s *State) addItem(e AddRequested) []Command {
	req := contract.AddCartItemRequest{
		ProductID: e.Product.ID,
		Quantity:  contract.IntPtr(e.Quantity),
		Size:      e.Size,
		Color:     e.Color,
	}
	if err := req.Validate(); err != nil {
		s.notify(err)
		return nil
	}

	key := LineKey{ProductID: e.Product.ID, Size: e.Size, Color: e.Color}
	idx, found := s.lineIndex(key)

	// over the per line cap the add is refused, not clamped
	if found && s.Lines[idx].Quantity+e.Quantity > contract.MaxLineQuantity {
		s.notify(errs.ErrQuantityLimit)
		return nil
	}

	seq := s.nextSeq()
	if found {
		line := &s.Lines[idx]
		line.Quantity += e.Quantity
		line.LineTotal = lineTotal(line.UnitPrice, line.Quantity)
		line.Phase = Pending{Seq: seq, Op: OpAdd}
	} else {
		tempID := e.TempID
		if tempID == "" {
			tempID = NewTempID()
		}
		s.Lines = append(s.Lines, Line{
			ID:        tempID,
			Key:       key,
			Product:   e.Product,
			Quantity:  e.Quantity,
			UnitPrice: e.Product.Price,
			LineTotal: lineTotal(e.Product.Price, e.Quantity),
			AddedAt:   e.At,
			Phase:     Pending{Seq: seq, Op: OpAdd},
		})
	}

	return s.enqueue(false, key, AddItemCommand{Seq: seq, Request: req})
}

func (s *State) updateItem(e UpdateRequested) []Command {
	req := contract.UpdateCartItemRequest{Quantity: contract.IntPtr(e.Quantity)}
	if err := req.Validate(); err != nil {
		s.notify(err)
		return nil
	}

	idx, found := s.lineIndex(e.Key)
	if !found {
		s.notify(errs.ErrCartItemNotFound)
		return nil
	}

	seq := s.nextSeq()
	line := &s.Lines[idx]
	line.Quantity = e.Quantity
	line.LineTotal = lineTotal(line.UnitPrice, line.Quantity)
	line.Phase = Pending{Seq: seq, Op: OpUpdate}

	return s.enqueue(false, e.Key, UpdateItemCommand{Seq: seq, Request: req})
}

func (s *State) removeItem(e RemoveRequested) []Command {
	idx, found := s.lineIndex(e.Key)
	if !found {
		s.notify(errs.ErrCartItemNotFound)
		return nil
	}

	seq := s.nextSeq()
	s.Lines = slices.Delete(s.Lines, idx, idx+1)

	return s.enqueue(false, e.Key, RemoveItemCommand{Seq: seq})
}

func (s *State) toggleWishlist(e WishlistToggled) []Command {
	productID := e.Product.ID
	if strings.TrimSpace(productID) == "" {
		s.notify(errs.ErrProductRequired)
		return nil
	}

	seq := s.nextSeq()
	key := LineKey{ProductID: productID}

	if idx, found := s.wishlistIndex(productID); found {
		s.Wishlist = slices.Delete(s.Wishlist, idx, idx+1)
		return s.enqueue(true, key, RemoveWishlistCommand{Seq: seq, ProductID: productID})
	}

	s.Wishlist = append(s.Wishlist, WishlistItem{
		Product: e.Product,
		AddedAt: e.At,
		Phase:   Pending{Seq: seq, Op: OpAdd},
	})
	return s.enqueue(true, key, AddWishlistCommand{Seq: seq, Request: contract.WishlistRequest{ProductID: productID}})
}

func flightKey(wishlist bool, key LineKey) string {
	if wishlist {
		return wishlistFlight(key.ProductID)
	}
	return cartFlight(key)
}

func (s *State) enqueue(wishlist bool, key LineKey, cmd Command) []Command {
	fk := flightKey(wishlist, key)
	f, ok := s.flights[fk]
	if !ok {
		f = &flight{wishlist: wishlist, key: key}
		s.flights[fk] = f
	}

	if f.active != 0 {
		f.queue = append(f.queue, cmd)
		return nil
	}

	return s.launch(fk, f, cmd)
}

// launch marks cmd as the active command of f. Update and remove commands
// learn the server id of their line here, since it may not have existed when
// they were queued.
func (s *State) launch(fk string, f *flight, cmd Command) []Command {
	f.active = cmd.Sequence()
	s.inflight[f.active] = fk

	switch c := cmd.(type) {
	case UpdateItemCommand:
		item, ok := s.confirmedLines[f.key]
		if !ok {
			s.fail(c.Seq, errs.ErrCartItemNotFound)
			return nil
		}
		c.ItemID = item.ID
		cmd = c
	case RemoveItemCommand:
		item, ok := s.confirmedLines[f.key]
		if !ok {
			s.fail(c.Seq, errs.ErrCartItemNotFound)
			return nil
		}
		c.ItemID = item.ID
		cmd = c
	}

	return []Command{cmd}
}

func (s *State) busy(fk string) bool {
	f, ok := s.flights[fk]
	return ok && (f.active != 0 || len(f.queue) > 0)
}

func (s *State) succeed(e MutationSucceeded) []Command {
	fk, ok := s.inflight[e.Seq]
	if !ok {
		return nil
	}
	f := s.flights[fk]
	delete(s.inflight, e.Seq)
	f.active = 0

	if e.Cart != nil {
		s.applyCart(e.Seq, *e.Cart, fk)
	}
	if e.Wishlist != nil {
		s.applyWishlist(e.Seq, e.Wishlist.Wishlist, fk)
	}
	if !f.wishlist && e.Cart == nil && e.Item != nil {
		s.confirmItem(f.key, e.Seq, *e.Item)
	}

	if len(f.queue) > 0 {
		cmd := f.queue[0]
		f.queue = f.queue[1:]
		return s.launch(fk, f, cmd)
	}

	delete(s.flights, fk)
	if (f.wishlist && e.Wishlist == nil) || (!f.wishlist && e.Cart == nil) {
		s.settleLocally(f, e.Seq)
	}
	return nil
}

// confirmItem records the line returned by a mutation when no snapshot came
// with it, so queued commands for the key can address the server line.
func (s *State) confirmItem(key LineKey, seq uint64, item contract.CartItem) {
	s.applied[cartFlight(key)] = seq
	s.confirmedLines[key] = item

	if idx, ok := s.lineIndex(key); ok && s.Lines[idx].IsTemporary() {
		s.Lines[idx].ID = item.ID
	}
}

// settleLocally confirms the optimistic version of a key when the server
// answered without a snapshot.
func (s *State) settleLocally(f *flight, seq uint64) {
	if f.wishlist {
		s.applied[wishlistFlight(f.key.ProductID)] = seq
		idx, ok := s.wishlistIndex(f.key.ProductID)
		if !ok {
			delete(s.confirmedWish, f.key.ProductID)
			return
		}
		item := &s.Wishlist[idx]
		item.Phase = Confirmed{Seq: seq}
		s.confirmedWish[f.key.ProductID] = contract.WishlistEntry{Product: item.Product, AddedAt: item.AddedAt}
		return
	}

	s.applied[cartFlight(f.key)] = seq
	idx, ok := s.lineIndex(f.key)
	if !ok {
		delete(s.confirmedLines, f.key)
		return
	}
	line := &s.Lines[idx]
	line.Phase = Confirmed{Seq: seq}
	s.confirmedLines[f.key] = line.Item()
}

func (s *State) fail(seq uint64, err error) {
	fk, ok := s.inflight[seq]
	if !ok {
		return
	}
	f := s.flights[fk]
	delete(s.inflight, seq)
	delete(s.flights, fk)

	if f.wishlist {
		s.rollbackWishlist(f.key.ProductID, seq, err)
	} else {
		s.rollbackLine(f.key, seq, err)
	}

	s.Notices = append(s.Notices, Notice{Seq: seq, Err: err})
}

func (s *State) rollbackLine(key LineKey, seq uint64, err error) {
	idx, found := s.lineIndex(key)
	item, confirmed := s.confirmedLines[key]

	switch {
	case confirmed:
		line := lineFromItem(item, RolledBack{Seq: seq, Err: err})
		if found {
			s.Lines[idx] = line
		} else {
			s.Lines = append(s.Lines, line)
		}
	case found:
		s.Lines = slices.Delete(s.Lines, idx, idx+1)
	}
}

func (s *State) rollbackWishlist(productID string, seq uint64, err error) {
	idx, found := s.wishlistIndex(productID)
	entry, confirmed := s.confirmedWish[productID]

	switch {
	case confirmed:
		item := WishlistItem{Product: entry.Product, AddedAt: entry.AddedAt, Phase: RolledBack{Seq: seq, Err: err}}
		if found {
			s.Wishlist[idx] = item
		} else {
			s.Wishlist = append(s.Wishlist, item)
		}
	case found:
		s.Wishlist = slices.Delete(s.Wishlist, idx, idx+1)
	}
}

// applyCart reconciles the lines with a server snapshot read after mutation
// seq. A key takes the snapshot unless it has mutations of its own pending or
// already reflects a newer one. The key being resolved always records the
// snapshot as its confirmed version, but keeps its optimistic line while more
// of its mutations are queued.
func (s *State) applyCart(seq uint64, cart contract.Cart, resolving string) {
	server := make(map[LineKey]contract.CartItem, len(cart.Items))
	for _, item := range cart.Items {
		server[itemKey(item)] = item
	}

	fresh := func(key LineKey) bool {
		fk := cartFlight(key)
		if fk == resolving {
			return true
		}
		return !s.busy(fk) && s.applied[fk] <= seq
	}
	visible := func(key LineKey) bool {
		return fresh(key) && !s.busy(cartFlight(key))
	}

	keys := make(map[LineKey]bool, len(server)+len(s.Lines))
	for key := range server {
		keys[key] = true
	}
	for _, line := range s.Lines {
		keys[line.Key] = true
	}
	for key := range s.confirmedLines {
		keys[key] = true
	}

	// decide visibility before applied moves on
	show := make(map[LineKey]bool, len(keys))
	for key := range keys {
		show[key] = visible(key)
		if !fresh(key) {
			continue
		}
		s.applied[cartFlight(key)] = seq
		if item, ok := server[key]; ok {
			s.confirmedLines[key] = item
		} else {
			delete(s.confirmedLines, key)
		}
	}

	lines := make([]Line, 0, len(cart.Items)+len(s.Lines))
	placed := make(map[LineKey]bool, len(cart.Items))
	for _, item := range cart.Items {
		key := itemKey(item)
		placed[key] = true

		if show[key] {
			lines = append(lines, lineFromItem(item, Confirmed{Seq: seq}))
			continue
		}

		if idx, ok := s.lineIndex(key); ok {
			line := s.Lines[idx]
			if line.IsTemporary() && cartFlight(key) == resolving {
				line.ID = item.ID
			}
			lines = append(lines, line)
		}
	}

	for _, line := range s.Lines {
		if placed[line.Key] || show[line.Key] {
			continue
		}
		lines = append(lines, line)
	}

	s.Lines = lines
}

// applyWishlist is applyCart for wishlist entries, keyed by product.
func (s *State) applyWishlist(seq uint64, entries []contract.WishlistEntry, resolving string) {
	server := make(map[string]contract.WishlistEntry, len(entries))
	for _, entry := range entries {
		server[entry.Product.ID] = entry
	}

	fresh := func(productID string) bool {
		fk := wishlistFlight(productID)
		if fk == resolving {
			return true
		}
		return !s.busy(fk) && s.applied[fk] <= seq
	}

	keys := make(map[string]bool, len(server)+len(s.Wishlist))
	for id := range server {
		keys[id] = true
	}
	for _, item := range s.Wishlist {
		keys[item.Product.ID] = true
	}
	for id := range s.confirmedWish {
		keys[id] = true
	}

	show := make(map[string]bool, len(keys))
	for id := range keys {
		show[id] = fresh(id) && !s.busy(wishlistFlight(id))
		if !fresh(id) {
			continue
		}
		s.applied[wishlistFlight(id)] = seq
		if entry, ok := server[id]; ok {
			s.confirmedWish[id] = entry
		} else {
			delete(s.confirmedWish, id)
		}
	}

	wishlist := make([]WishlistItem, 0, len(entries)+len(s.Wishlist))
	placed := make(map[string]bool, len(entries))
	for _, entry := range entries {
		id := entry.Product.ID
		placed[id] = true

		if show[id] {
			wishlist = append(wishlist, WishlistItem{Product: entry.Product, AddedAt: entry.AddedAt, Phase: Confirmed{Seq: seq}})
			continue
		}

		if idx, ok := s.wishlistIndex(id); ok {
			wishlist = append(wishlist, s.Wishlist[idx])
		}
	}

	for _, item := range s.Wishlist {
		if placed[item.Product.ID] || show[item.Product.ID] {
			continue
		}
		wishlist = append(wishlist, item)
	}

	s.Wishlist = wishlist
}
