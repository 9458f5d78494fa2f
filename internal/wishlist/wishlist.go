// Package wishlist manages the saved-for-later product list.
package wishlist

import (
	"context"

	"github.com/freshmart/storefront/internal/guest"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/internal/synced"
)

// Item is a wishlist entry carrying the product fields shown on cards.
type Item struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Unit      string  `json:"unit"`
	Image     string  `json:"image,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Stock     int     `json:"stock"`
}

// FromProduct snapshots the card fields of p.
func FromProduct(p storeapi.Product) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Unit:      p.Unit,
		Image:     p.ImageURL,
		Rating:    p.Rating,
		Stock:     p.Stock,
	}
}

// Backend is the subset of the REST client used for signed-in wishlists.
type Backend interface {
	Wishlist(ctx context.Context, userID int64) ([]storeapi.WishlistEntry, error)
	AddWishlistItem(ctx context.Context, userID, productID int64) error
	RemoveWishlistItem(ctx context.Context, userID, productID int64) error
	ClearWishlist(ctx context.Context, userID int64) error
}

// Wishlist is the session-scoped wishlist state container.
type Wishlist struct {
	items   *synced.Collection[Item]
	backend Backend
	userID  int64
}

// NewGuest builds a wishlist persisted in kv under the "wishlist" key.
func NewGuest(kv synced.KV) *Wishlist {
	return &Wishlist{
		items: synced.New[Item](synced.NewLocalStore[Item](kv, guest.WishlistKey), synced.PatchLocal),
	}
}

// NewForUser builds a wishlist mirrored from the backend. Writes patch the
// local view after the server acknowledges instead of reloading.
func NewForUser(backend Backend, userID int64) *Wishlist {
	load := func(ctx context.Context) ([]Item, error) {
		entries, err := backend.Wishlist(ctx, userID)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(entries))
		for _, e := range entries {
			items = append(items, Item{
				ProductID: e.ProductID,
				Name:      e.Name,
				Price:     e.Price,
				Unit:      e.Unit,
				Image:     e.Image,
				Rating:    e.Rating,
				Stock:     e.Stock,
			})
		}
		return items, nil
	}
	return &Wishlist{
		items:   synced.New[Item](synced.NewRemoteStore(load), synced.PatchLocal),
		backend: backend,
		userID:  userID,
	}
}

// Load initialises the wishlist from its active store.
func (w *Wishlist) Load(ctx context.Context) error {
	return w.items.Init(ctx)
}

// Refresh reloads the wishlist from its active store.
func (w *Wishlist) Refresh(ctx context.Context) error {
	return w.items.Refresh(ctx)
}

// Authenticated reports whether the wishlist is server backed.
func (w *Wishlist) Authenticated() bool {
	return w.items.Remote()
}

// Items returns the current entries.
func (w *Wishlist) Items() []Item {
	return w.items.Items()
}

// Count is the number of entries.
func (w *Wishlist) Count() int {
	return w.items.Len()
}

// IsInWishlist reports whether productID is saved.
func (w *Wishlist) IsInWishlist(productID int64) bool {
	_, ok := w.items.Find(func(i Item) bool { return i.ProductID == productID })
	return ok
}

// AddToWishlist saves product. added is false when it was already present,
// in which case no call is made.
func (w *Wishlist) AddToWishlist(ctx context.Context, product storeapi.Product) (added bool, err error) {
	if w.IsInWishlist(product.ID) {
		return false, nil
	}
	remote := func(ctx context.Context) error {
		return w.backend.AddWishlistItem(ctx, w.userID, product.ID)
	}
	added = true
	err = w.items.Mutate(ctx, remote, func(items []Item) []Item {
		for _, item := range items {
			if item.ProductID == product.ID {
				added = false
				return items
			}
		}
		added = true
		return append(items, FromProduct(product))
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// RemoveFromWishlist drops productID.
func (w *Wishlist) RemoveFromWishlist(ctx context.Context, productID int64) error {
	remote := func(ctx context.Context) error {
		return w.backend.RemoveWishlistItem(ctx, w.userID, productID)
	}
	return w.items.Mutate(ctx, remote, func(items []Item) []Item {
		out := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				out = append(out, item)
			}
		}
		return out
	})
}

// ClearWishlist removes every entry.
func (w *Wishlist) ClearWishlist(ctx context.Context) error {
	remote := func(ctx context.Context) error {
		return w.backend.ClearWishlist(ctx, w.userID)
	}
	return w.items.Mutate(ctx, remote, func([]Item) []Item {
		return []Item{}
	})
}
