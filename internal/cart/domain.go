package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/freshmart/storefront/internal/storeapi"
)

var (
	// ErrInvalidQuantity indicates a quantity outside the allowed range.
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	// ErrItemNotFound indicates a line id absent from the guest cart.
	ErrItemNotFound = errors.New("cart: item not found")
)

// Item is one cart line with a denormalized product snapshot.
type Item struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   storeapi.Product `json:"product"`
}

// Backend is the subset of the REST client used for signed-in carts.
type Backend interface {
	Cart(ctx context.Context, userID int64) ([]storeapi.CartLine, error)
	AddCartItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error
}

// IDSource mints guest line ids from the clock in milliseconds, bumping
// past the previous id so two lines minted in the same millisecond differ.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource returns an IDSource reading now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns a fresh id.
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

var defaultIDs = NewIDSource(nil)

func fromLines(lines []storeapi.CartLine) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity, Product: l.Product})
	}
	return items
}
