package cartclient

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/pkg/cartstate"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/rs/zerolog/log"
)

const defaultCommandTimeout = 15 * time.Second

// Store owns a cartstate.State. Events are reduced one at a time on the Run
// goroutine; the commands they produce run concurrently and report back as
// events.
type Store struct {
	api     API
	events  chan cartstate.Event
	timeout time.Duration

	mu        sync.RWMutex
	state     cartstate.State
	observers []func(cartstate.State)

	wg sync.WaitGroup
}

func NewStore(api API) *Store {
	return &Store{
		api:     api,
		events:  make(chan cartstate.Event, 64),
		timeout: defaultCommandTimeout,
	}
}

// Run reduces dispatched events until ctx is done, then waits for running
// commands to return.
func (s *Store) Run(ctx context.Context) error {
	defer s.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.apply(ctx, ev)
		}
	}
}

// Dispatch queues ev for the Run loop.
func (s *Store) Dispatch(ev cartstate.Event) {
	s.events <- ev
}

func (s *Store) dispatch(ctx context.Context, ev cartstate.Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *Store) State() cartstate.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnChange registers fn to be called, on the Run goroutine, after every event.
func (s *Store) OnChange(fn func(cartstate.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Load fetches the cart and wishlist and dispatches them.
func (s *Store) Load(ctx context.Context) error {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	wishlist, err := s.api.GetWishlist(ctx)
	if err != nil {
		return fmt.Errorf("failed to load wishlist: %w", err)
	}

	s.dispatch(ctx, cartstate.CartLoaded{Cart: cart})
	s.dispatch(ctx, cartstate.WishlistLoaded{Wishlist: wishlist.Wishlist})
	return nil
}

func (s *Store) apply(ctx context.Context, ev cartstate.Event) {
	s.mu.Lock()
	next, cmds := cartstate.Reduce(s.state, ev)
	s.state = next
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}

	for _, cmd := range cmds {
		s.wg.Add(1)
		go s.execute(ctx, cmd)
	}
}

func (s *Store) execute(ctx context.Context, cmd cartstate.Command) {
	defer s.wg.Done()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.dispatch(ctx, s.run(cctx, cmd))
}

// run performs cmd. Cart mutations are followed by a cart read so the reducer
// reconciles against the whole cart, not just the touched line.
func (s *Store) run(ctx context.Context, cmd cartstate.Command) cartstate.Event {
	var (
		item *contract.CartItem
		err  error
	)
	switch c := cmd.(type) {
	case cartstate.AddItemCommand:
		var resp contract.AddCartItemResponse
		resp, err = s.api.AddItem(ctx, c.Request)
		item = &resp.CartItem
	case cartstate.UpdateItemCommand:
		var resp contract.UpdateCartItemResponse
		resp, err = s.api.UpdateItem(ctx, c.ItemID, c.Request)
		item = &resp.CartItem
	case cartstate.RemoveItemCommand:
		_, err = s.api.RemoveItem(ctx, c.ItemID)
	case cartstate.AddWishlistCommand:
		resp, err := s.api.AddToWishlist(ctx, c.Request)
		return wishlistResult(c.Seq, resp, err)
	case cartstate.RemoveWishlistCommand:
		resp, err := s.api.RemoveFromWishlist(ctx, c.ProductID)
		return wishlistResult(c.Seq, resp, err)
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}

	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "Store").Uint64("seq", cmd.Sequence()).Msg("cart mutation failed")
		return cartstate.MutationFailed{Seq: cmd.Sequence(), Err: err}
	}

	cart, err := s.api.GetCart(ctx)
	if err != nil {
		// the mutation itself went through
		log.Ctx(ctx).Warn().Err(err).Str("component", "Store").Uint64("seq", cmd.Sequence()).Msg("failed to refresh cart")
		return cartstate.MutationSucceeded{Seq: cmd.Sequence(), Item: item}
	}

	return cartstate.MutationSucceeded{Seq: cmd.Sequence(), Item: item, Cart: &cart}
}

func wishlistResult(seq uint64, resp contract.WishlistResponse, err error) cartstate.Event {
	if err != nil {
		log.Warn().Err(err).Str("component", "Store").Uint64("seq", seq).Msg("wishlist mutation failed")
		return cartstate.MutationFailed{Seq: seq, Err: err}
	}
	return cartstate.MutationSucceeded{Seq: seq, Wishlist: &resp}
}
