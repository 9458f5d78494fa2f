// Package checkout turns the signed-in cart into a backend order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/jobs"
)

// IdempotencyModule scopes checkout keys in the idempotency guard.
const IdempotencyModule = "checkout"

var (
	// ErrEmptyCart indicates a checkout without lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrAlreadyPlaced indicates a replayed idempotency key.
	ErrAlreadyPlaced = errors.New("checkout: order already placed")
)

// Backend creates orders.
type Backend interface {
	CreateOrder(ctx context.Context, payload storeapi.OrderPayload) (storeapi.OrderCreated, error)
}

// Notifier queues the order confirmation mail.
type Notifier interface {
	EnqueueOrderConfirmation(ctx context.Context, payload jobs.OrderConfirmationPayload) error
}

// Customer identifies who is checking out.
type Customer struct {
	UserID int64
	Email  string
	Name   string
}

// Receipt is returned after a successful checkout.
type Receipt struct {
	OrderID   int64   `json:"order_id"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// Service places orders.
type Service struct {
	backend  Backend
	guard    shared.Idempotency
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service. notifier may be nil.
func NewService(backend Backend, guard shared.Idempotency, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, guard: guard, notifier: notifier, logger: logger}
}

// Place submits the cart as an order for customer. An empty key is
// replaced by a random one, which disables replay detection.
func (s *Service) Place(ctx context.Context, key string, customer Customer, c *cart.Cart) (Receipt, error) {
	if customer.UserID == 0 || !c.Authenticated() {
		return Receipt{}, httpx.WithMessage(httpx.ErrUnauthorized, "Please sign in to checkout")
	}
	if key == "" {
		key = uuid.NewString()
	}
	// The key is claimed before the cart is inspected: a replay after a
	// successful order finds the cart already cleared.
	if err := s.guard.CheckAndInsert(ctx, key, IdempotencyModule); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			return Receipt{}, ErrAlreadyPlaced
		}
		return Receipt{}, fmt.Errorf("checkout: claim key: %w", err)
	}
	summary := c.Summarize()
	if len(summary.Items) == 0 {
		s.release(ctx, key)
		return Receipt{}, ErrEmptyCart
	}

	created, err := s.backend.CreateOrder(ctx, orderPayload(customer.UserID, summary))
	if err != nil {
		s.release(ctx, key)
		return Receipt{}, err
	}
	log := s.logger.With(slog.Int64("order_id", created.OrderID), slog.Int64("user_id", customer.UserID))
	log.Info("order placed", slog.Float64("total", summary.Total))

	if err := c.ClearCart(ctx); err != nil {
		log.Warn("clear cart after checkout", slog.Any("error", err))
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueOrderConfirmation(ctx, confirmation(created.OrderID, customer, summary)); err != nil {
			log.Warn("enqueue order confirmation", slog.Any("error", err))
		}
	}
	return Receipt{OrderID: created.OrderID, Total: summary.Total, ItemCount: summary.Count}, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.guard.Delete(ctx, key, IdempotencyModule); err != nil {
		s.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", err))
	}
}

func orderPayload(userID int64, summary cart.Summary) storeapi.OrderPayload {
	lines := make([]storeapi.OrderLine, 0, len(summary.Items))
	for _, item := range summary.Items {
		lines = append(lines, storeapi.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})
	}
	return storeapi.OrderPayload{UserID: userID, TotalAmount: summary.Total, Items: lines}
}

func confirmation(orderID int64, customer Customer, summary cart.Summary) jobs.OrderConfirmationPayload {
	lines := make([]jobs.OrderLine, 0, len(summary.Items))
	for _, item := range summary.Items {
		lines = append(lines, jobs.OrderLine{Name: item.Product.Name, Quantity: item.Quantity, Price: item.Product.Price})
	}
	return jobs.OrderConfirmationPayload{
		OrderID: orderID,
		UserID:  customer.UserID,
		Email:   customer.Email,
		Name:    customer.Name,
		Total:   summary.Total,
		Lines:   lines,
	}
}
