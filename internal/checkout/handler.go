package checkout

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
)

// IdempotencyHeader carries the client-chosen checkout key.
const IdempotencyHeader = "Idempotency-Key"

// CartLoader builds the cart of the request session.
type CartLoader interface {
	ForRequest(r *http.Request) (*cart.Cart, error)
}

// Handler exposes checkout over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	carts   CartLoader
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, carts CartLoader) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, carts: carts}
}

// MountRoutes registers checkout routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.place)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	userID, ok := sess.UserID()
	if !ok {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrUnauthorized, "Please sign in to checkout"))
		return
	}
	c, err := h.carts.ForRequest(r)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	customer := Customer{
		UserID: userID,
		Email:  sess.Get(shared.SessionEmailKey),
		Name:   sess.Get(shared.SessionNameKey),
	}
	receipt, err := h.service.Place(r.Context(), r.Header.Get(IdempotencyHeader), customer, c)
	if err != nil {
		h.fail(w, "place order", err)
		return
	}
	httpx.Success(w, http.StatusCreated, receipt, "Order placed successfully!")
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("checkout: "+op, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrEmptyCart):
		err = httpx.Invalid("Your cart is empty")
	case errors.Is(err, ErrAlreadyPlaced):
		err = httpx.WithMessage(httpx.ErrDuplicate, "This order was already placed")
	}
	httpx.RespondError(w, err)
}
