// Package cart manages the shopping cart for guest and signed-in sessions.
package cart

import (
	"context"

	"github.com/freshmart/storefront/internal/guest"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/internal/synced"
)

// Cart is the session-scoped cart state container.
type Cart struct {
	items   *synced.Collection[Item]
	backend Backend
	userID  int64
	ids     *IDSource
}

// Option customises a Cart.
type Option func(*Cart)

// WithIDSource overrides the guest line id source.
func WithIDSource(ids *IDSource) Option {
	return func(c *Cart) { c.ids = ids }
}

// NewGuest builds a cart persisted in kv under the "cart" key.
func NewGuest(kv synced.KV, opts ...Option) *Cart {
	c := &Cart{
		items: synced.New[Item](synced.NewLocalStore[Item](kv, guest.CartKey), synced.ReloadAll),
		ids:   defaultIDs,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewForUser builds a cart whose source of truth is the backend.
func NewForUser(backend Backend, userID int64, opts ...Option) *Cart {
	load := func(ctx context.Context) ([]Item, error) {
		lines, err := backend.Cart(ctx, userID)
		if err != nil {
			return nil, err
		}
		return fromLines(lines), nil
	}
	c := &Cart{
		items:   synced.New[Item](synced.NewRemoteStore(load), synced.ReloadAll),
		backend: backend,
		userID:  userID,
		ids:     defaultIDs,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load initialises the cart from its active store.
func (c *Cart) Load(ctx context.Context) error {
	return c.items.Init(ctx)
}

// Refresh reloads the cart from its active store.
func (c *Cart) Refresh(ctx context.Context) error {
	return c.items.Refresh(ctx)
}

// Authenticated reports whether the cart is server backed.
func (c *Cart) Authenticated() bool {
	return c.items.Remote()
}

// Items returns the current line items.
func (c *Cart) Items() []Item {
	return c.items.Items()
}

// Add puts one unit of product in the cart.
func (c *Cart) Add(ctx context.Context, product storeapi.Product) error {
	return c.AddToCart(ctx, product, 1)
}

// AddToCart adds quantity units of product, merging with an existing line.
func (c *Cart) AddToCart(ctx context.Context, product storeapi.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	remote := func(ctx context.Context) error {
		return c.backend.AddCartItem(ctx, c.userID, product.ID, quantity)
	}
	return c.items.Mutate(ctx, remote, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == product.ID {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, Item{
			ID:        c.ids.Next(),
			ProductID: product.ID,
			Quantity:  quantity,
			Product:   product,
		})
	})
}

// UpdateQuantity sets a line's quantity; zero removes the line.
// Quantities are not clamped against stock.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if !c.Authenticated() && !c.has(itemID) {
		return ErrItemNotFound
	}
	remote := func(ctx context.Context) error {
		return c.backend.UpdateCartItem(ctx, c.userID, itemID, quantity)
	}
	return c.items.Mutate(ctx, remote, func(items []Item) []Item {
		if quantity == 0 {
			return without(items, itemID)
		}
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// RemoveFromCart deletes a line.
func (c *Cart) RemoveFromCart(ctx context.Context, itemID int64) error {
	if !c.Authenticated() && !c.has(itemID) {
		return ErrItemNotFound
	}
	remote := func(ctx context.Context) error {
		return c.backend.RemoveCartItem(ctx, c.userID, itemID)
	}
	return c.items.Mutate(ctx, remote, func(items []Item) []Item {
		return without(items, itemID)
	})
}

// ClearCart removes every line.
func (c *Cart) ClearCart(ctx context.Context) error {
	remote := func(ctx context.Context) error {
		return c.backend.ClearCart(ctx, c.userID)
	}
	return c.items.Mutate(ctx, remote, func([]Item) []Item {
		return []Item{}
	})
}

// Count is the sum of line quantities.
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.items.Items() {
		count += item.Quantity
	}
	return count
}

// Total is the sum of price times quantity.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, item := range c.items.Items() {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// Summary is a consistent snapshot of items and derived values.
type Summary struct {
	Items         []Item  `json:"items"`
	Count         int     `json:"count"`
	Total         float64 `json:"total"`
	Authenticated bool    `json:"authenticated"`
}

// Summarize computes items, count and total from one snapshot.
func (c *Cart) Summarize() Summary {
	items := c.items.Items()
	s := Summary{Items: items, Authenticated: c.Authenticated()}
	for _, item := range items {
		s.Count += item.Quantity
		s.Total += item.Product.Price * float64(item.Quantity)
	}
	return s
}

func (c *Cart) has(itemID int64) bool {
	_, ok := c.items.Find(func(i Item) bool { return i.ID == itemID })
	return ok
}

func without(items []Item, itemID int64) []Item {
	out := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			out = append(out, item)
		}
	}
	return out
}
