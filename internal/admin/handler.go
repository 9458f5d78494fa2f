package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
)

// Handler wires HTTP endpoints for the product manager.
type Handler struct {
	logger  *slog.Logger
	manager *Manager
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, manager *Manager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, manager: manager}
}

// MountRoutes registers admin routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}/edit", h.editProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.manager.List(r.Context(), catalog.Criteria{Query: q.Get("search"), Category: q.Get("category")})
	if err != nil {
		h.fail(w, "list products", err, "Failed to load products")
		return
	}
	httpx.OK(w, view)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid product form"))
		return
	}
	products, err := h.manager.Create(r.Context(), actor(r), form)
	if errors.Is(err, ErrReloadFailed) {
		h.appliedStale(w, http.StatusCreated, "Product added successfully!")
		return
	}
	if err != nil {
		h.fail(w, "create product", err, "Save failed")
		return
	}
	httpx.Success(w, http.StatusCreated, products, "Product added successfully!")
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	form, err := h.manager.Edit(r.Context(), id)
	if err != nil {
		h.fail(w, "edit product", err, "Failed to load product")
		return
	}
	httpx.OK(w, form)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid product form"))
		return
	}
	products, err := h.manager.Update(r.Context(), actor(r), id, form)
	if errors.Is(err, ErrReloadFailed) {
		h.appliedStale(w, http.StatusOK, "Product updated successfully!")
		return
	}
	if err != nil {
		h.fail(w, "update product", err, "Save failed")
		return
	}
	httpx.Success(w, http.StatusOK, products, "Product updated successfully!")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	products, err := h.manager.Delete(r.Context(), actor(r), id)
	if errors.Is(err, ErrReloadFailed) {
		h.appliedStale(w, http.StatusOK, "Product deleted successfully!")
		return
	}
	if err != nil {
		h.fail(w, "delete product", err, "Delete failed")
		return
	}
	httpx.Success(w, http.StatusOK, products, "Product deleted successfully!")
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.manager.Categories(r.Context())
	if err != nil {
		h.fail(w, "list categories", err, "Failed to load categories")
		return
	}
	httpx.OK(w, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var form CategoryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid category form"))
		return
	}
	created, err := h.manager.CreateCategory(r.Context(), actor(r), form)
	if err != nil {
		h.fail(w, "create category", err, "Save failed")
		return
	}
	httpx.Success(w, http.StatusCreated, created, "Category added successfully!")
}

// appliedStale confirms a write whose list reload failed; data is null so
// the client keeps its table and refetches.
func (h *Handler) appliedStale(w http.ResponseWriter, status int, message string) {
	httpx.JSON(w, status, httpx.Envelope{Data: nil, Notification: httpx.Notify(httpx.KindSuccess, message)})
}

// fail logs err and responds; fallback replaces an empty message.
func (h *Handler) fail(w http.ResponseWriter, op string, err error, fallback string) {
	h.logger.Error(op, slog.Any("error", err))
	if err.Error() == "" || httpx.StatusFor(err) == http.StatusInternalServerError {
		err = httpx.WithMessage(err, fallback)
	}
	httpx.RespondError(w, err)
}

func actor(r *http.Request) int64 {
	id, _ := shared.UserIDFromContext(r.Context())
	return id
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid product id"))
		return 0, false
	}
	return id, true
}
