package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockdesk/stockdesk/internal/dispatch"
	"github.com/stockdesk/stockdesk/internal/invoices"
	"github.com/stockdesk/stockdesk/internal/masterdata/clients"
	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/orders"
	"github.com/stockdesk/stockdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SupplierHandler *suppliers.Handler
	ProductHandler  *products.Handler
	ClientHandler   *clients.Handler
	OrderHandler    *orders.Handler
	DispatchHandler *dispatch.Handler
	InvoiceHandler  *invoices.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/masterdata", func(r chi.Router) {
		r.Use(RequirePrincipal)
		r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		r.Route("/products", params.ProductHandler.MountRoutes)
		r.Route("/clients", params.ClientHandler.MountRoutes)
	})

	r.Route("/purchase-orders", func(r chi.Router) {
		r.Use(RequirePrincipal)
		params.OrderHandler.MountRoutes(r)
		params.DispatchHandler.MountRoutes(r)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Use(RequirePrincipal)
		params.InvoiceHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
