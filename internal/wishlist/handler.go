package wishlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/internal/synced"
)

// ProductLookup fetches the product a new entry is built from.
type ProductLookup interface {
	Product(ctx context.Context, id int64) (storeapi.Product, error)
}

// Handler exposes the session wishlist over HTTP.
type Handler struct {
	logger   *slog.Logger
	backend  Backend
	products ProductLookup
	guests   func(sessionID string) synced.KV
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, backend Backend, products ProductLookup, guests func(sessionID string) synced.KV) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, backend: backend, products: products, guests: guests}
}

// MountRoutes registers wishlist routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.clear)
	r.Post("/items", h.add)
	r.Get("/items/{productID}", h.presence)
	r.Delete("/items/{productID}", h.remove)
}

// ForRequest builds and loads the wishlist of the request session.
func (h *Handler) ForRequest(r *http.Request) (*Wishlist, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, shared.ErrSessionMissing
	}
	var w *Wishlist
	if userID, ok := sess.UserID(); ok {
		w = NewForUser(h.backend, userID)
	} else {
		w = NewGuest(h.guests(sess.ID))
	}
	if err := w.Load(r.Context()); err != nil {
		return nil, err
	}
	return w, nil
}

type view struct {
	Items         []Item `json:"items"`
	Count         int    `json:"count"`
	Authenticated bool   `json:"authenticated"`
}

func viewOf(w *Wishlist) view {
	items := w.Items()
	return view{Items: items, Count: len(items), Authenticated: w.Authenticated()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	wl, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load wishlist", err)
		return
	}
	httpx.OK(w, viewOf(wl))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "A valid product_id is required"))
		return
	}
	wl, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load wishlist", err)
		return
	}
	if wl.IsInWishlist(req.ProductID) {
		alreadySaved(w, wl)
		return
	}
	product, err := h.products.Product(r.Context(), req.ProductID)
	if err != nil {
		h.fail(w, "lookup product", err)
		return
	}
	added, err := wl.AddToWishlist(r.Context(), product)
	if err != nil {
		h.fail(w, "add to wishlist", err)
		return
	}
	if !added {
		alreadySaved(w, wl)
		return
	}
	httpx.Success(w, http.StatusOK, viewOf(wl), "Added to wishlist")
}

func alreadySaved(w http.ResponseWriter, wl *Wishlist) {
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Data: viewOf(wl), Notification: httpx.Notify(httpx.KindInfo, "Already in your wishlist")})
}

func (h *Handler) presence(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	wl, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load wishlist", err)
		return
	}
	httpx.OK(w, map[string]bool{"in_wishlist": wl.IsInWishlist(productID)})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	wl, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load wishlist", err)
		return
	}
	if err := wl.RemoveFromWishlist(r.Context(), productID); err != nil {
		h.fail(w, "remove from wishlist", err)
		return
	}
	httpx.Success(w, http.StatusOK, viewOf(wl), "Removed from wishlist")
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	wl, err := h.ForRequest(r)
	if err != nil {
		h.fail(w, "load wishlist", err)
		return
	}
	if err := wl.ClearWishlist(r.Context()); err != nil {
		h.fail(w, "clear wishlist", err)
		return
	}
	httpx.Success(w, http.StatusOK, viewOf(wl), "Wishlist cleared")
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid product id"))
		return 0, false
	}
	return id, true
}
