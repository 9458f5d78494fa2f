package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freshmart/storefront/internal/account"
	"github.com/freshmart/storefront/internal/admin"
	"github.com/freshmart/storefront/internal/auth"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/checkout"
	"github.com/freshmart/storefront/internal/observability"
	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/internal/wishlist"
	"github.com/freshmart/storefront/jobs"
)

// BackendHealth checks the REST backend.
type BackendHealth interface {
	Health(ctx context.Context) (storeapi.HealthStatus, error)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	CatalogHandler  *catalog.Handler
	CartHandler     *cart.Handler
	WishlistHandler *wishlist.Handler
	AdminHandler    *admin.Handler
	AccountHandler  *account.Handler
	CheckoutHandler *checkout.Handler
	JobHandler      *jobs.Handler
	Backend         BackendHealth
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Backend != nil {
		r.Get("/healthz/backend", func(w http.ResponseWriter, r *http.Request) {
			status, err := params.Backend.Health(r.Context())
			if err != nil {
				params.Logger.Warn("backend health", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			httpx.OK(w, status)
		})
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	r.Route("/cart", params.CartHandler.MountRoutes)
	r.Route("/wishlist", params.WishlistHandler.MountRoutes)
	r.Route("/admin", params.AdminHandler.MountRoutes)
	r.Route("/account", func(r chi.Router) {
		r.Use(RequireUser)
		params.AccountHandler.MountRoutes(r)
	})
	r.Route("/checkout", func(r chi.Router) {
		r.Use(RequireUser)
		params.CheckoutHandler.MountRoutes(r)
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return otelhttp.NewHandler(r, "storefront")
}
