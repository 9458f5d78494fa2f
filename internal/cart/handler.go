package cart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/internal/synced"
)

// ProductLookup fetches the product snapshot stored on guest lines.
type ProductLookup interface {
	Product(ctx context.Context, id int64) (storeapi.Product, error)
}

// GuestStorage resolves the guest namespace of a session.
type GuestStorage func(sessionID string) synced.KV

// Handler exposes the session cart over HTTP.
type Handler struct {
	logger   *slog.Logger
	backend  Backend
	products ProductLookup
	guests   GuestStorage
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, backend Backend, products ProductLookup, guests GuestStorage) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, backend: backend, products: products, guests: guests}
}

// MountRoutes registers cart routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Delete("/", h.clear)
	r.Post("/items", h.addItem)
	r.Put("/items/{id}", h.updateItem)
	r.Delete("/items/{id}", h.removeItem)
}

// ForRequest builds and loads the cart of the request session.
func (h *Handler) ForRequest(r *http.Request) (*Cart, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, shared.ErrSessionMissing
	}
	var c *Cart
	if userID, ok := sess.UserID(); ok {
		c = NewForUser(h.backend, userID)
	} else {
		c = NewGuest(h.guests(sess.ID))
	}
	if err := c.Load(r.Context()); err != nil {
		return nil, err
	}
	return c, nil
}

type addRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	c, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	httpx.OK(w, c.Summarize())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "A valid product_id is required"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	c, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	product := storeapi.Product{ID: req.ProductID}
	if !c.Authenticated() {
		product, err = h.products.Product(r.Context(), req.ProductID)
		if err != nil {
			h.fail(w, "lookup product", err)
			return
		}
	}
	if err := c.AddToCart(r.Context(), product, req.Quantity); err != nil {
		h.fail(w, "add to cart", err)
		return
	}
	httpx.Success(w, http.StatusOK, c.Summarize(), "Added to cart")
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "A quantity is required"))
		return
	}
	c, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	if err := c.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		h.fail(w, "update cart item", err)
		return
	}
	httpx.OK(w, c.Summarize())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	c, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	if err := c.RemoveFromCart(r.Context(), id); err != nil {
		h.fail(w, "remove cart item", err)
		return
	}
	httpx.Success(w, http.StatusOK, c.Summarize(), "Removed from cart")
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	if err := c.ClearCart(r.Context()); err != nil {
		h.fail(w, "clear cart", err)
		return
	}
	httpx.Success(w, http.StatusOK, c.Summarize(), "Cart cleared")
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		err = httpx.WithMessage(httpx.ErrValidation, "Invalid quantity")
	case errors.Is(err, ErrItemNotFound):
		err = httpx.WithMessage(httpx.ErrNotFound, "Cart item not found")
	}
	httpx.RespondError(w, err)
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid cart item id"))
		return 0, false
	}
	return id, true
}
