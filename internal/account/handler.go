package account

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
)

// Handler wires HTTP endpoints for the account dashboard.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers account routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Get("/orders/{id}", h.order)
	r.Get("/addresses", h.listAddresses)
	r.Post("/addresses", h.addAddress)
	r.Put("/addresses/{id}", h.updateAddress)
	r.Delete("/addresses/{id}", h.deleteAddress)
	r.Get("/payment-methods", h.listPayments)
	r.Post("/payment-methods", h.addPayment)
	r.Delete("/payment-methods/{id}", h.deletePayment)
	r.Put("/settings", h.updateSettings)
	r.Put("/password", h.changePassword)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	d, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	httpx.OK(w, d)
}

func (h *Handler) order(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.service.Order(r.Context(), userID, id)
	if err != nil {
		h.fail(w, "load order", err)
		return
	}
	httpx.OK(w, o)
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	addrs, err := h.service.Addresses(r.Context(), userID)
	if err != nil {
		h.fail(w, "list addresses", err)
		return
	}
	httpx.OK(w, addrs)
}

func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var form AddressForm
	if !decode(w, r, &form) {
		return
	}
	addrs, err := h.service.AddAddress(r.Context(), userID, form)
	if err != nil {
		h.fail(w, "add address", err)
		return
	}
	httpx.Success(w, http.StatusCreated, addrs, "Address added successfully!")
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var form AddressForm
	if !decode(w, r, &form) {
		return
	}
	addrs, err := h.service.UpdateAddress(r.Context(), userID, id, form)
	if err != nil {
		h.fail(w, "update address", err)
		return
	}
	httpx.Success(w, http.StatusOK, addrs, "Address updated successfully!")
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	addrs, err := h.service.DeleteAddress(r.Context(), userID, id)
	if err != nil {
		h.fail(w, "delete address", err)
		return
	}
	httpx.Success(w, http.StatusOK, addrs, "Address deleted successfully!")
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	methods, err := h.service.PaymentMethods(r.Context(), userID)
	if err != nil {
		h.fail(w, "list payment methods", err)
		return
	}
	httpx.OK(w, methods)
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var form PaymentForm
	if !decode(w, r, &form) {
		return
	}
	method, err := h.service.AddPaymentMethod(r.Context(), userID, form)
	if err != nil {
		h.fail(w, "add payment method", err)
		return
	}
	httpx.Success(w, http.StatusCreated, method, "Payment method added!")
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePaymentMethod(r.Context(), userID, id); err != nil {
		h.fail(w, "delete payment method", err)
		return
	}
	httpx.Success(w, http.StatusOK, nil, "Payment method removed")
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var form SettingsForm
	if !decode(w, r, &form) {
		return
	}
	if err := h.service.UpdateSettings(r.Context(), userID, form); err != nil {
		h.fail(w, "update settings", err)
		return
	}
	httpx.Success(w, http.StatusOK, form, "Settings updated")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var form PasswordForm
	if !decode(w, r, &form) {
		return
	}
	if err := h.service.ChangePassword(r.Context(), userID, form); err != nil {
		h.fail(w, "change password", err)
		return
	}
	httpx.Success(w, http.StatusOK, nil, "Password updated successfully!")
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrUnauthorized, "Please sign in to continue"))
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Invalid id"))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Malformed request body"))
		return false
	}
	return true
}
