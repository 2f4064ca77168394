package pos

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/guard"
	"github.com/vince123890/website-kasir/internal/platform/httpx"
	"github.com/vince123890/website-kasir/internal/rbac"
	"github.com/vince123890/website-kasir/internal/route"
)

// Lister is what the handler needs from the repository.
type Lister interface {
	ListProducts(ctx context.Context, ac access.Context, f ListFilters) (Page[Product], error)
	ListSuppliers(ctx context.Context, ac access.Context, f ListFilters) (Page[Supplier], error)
	ListStocks(ctx context.Context, ac access.Context, f ListFilters) (Page[Stock], error)
	ListTransactions(ctx context.Context, ac access.Context, f ListFilters) (Page[Transaction], error)
}

// Handler serves the JSON listings.
type Handler struct {
	logger *slog.Logger
	repo   Lister
	guard  *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo Lister, g *guard.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo, guard: g}
}

// MountRoutes registers the listing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	g := h.guard
	r.With(g.Protect(route.ProductsIndex, g.RequireAny(rbac.PermProductsView))...).Get("/products", h.listProducts)
	r.With(g.Protect(route.SuppliersIndex, g.RequireAny(rbac.PermSuppliersView))...).Get("/suppliers", h.listSuppliers)
	r.With(g.Protect(route.TenantSuppliersIndex, g.RequireAny(rbac.PermSuppliersView))...).Get("/tenants/{tenant_id}/suppliers", h.listSuppliers)
	r.With(g.Protect(route.StocksIndex, g.RequireAny(rbac.PermStocksView))...).Get("/stocks", h.listStocks)
	r.With(g.Protect(route.StoreStocksIndex, g.RequireAny(rbac.PermStocksView))...).Get("/stores/{store_id}/stocks", h.listStocks)
	r.With(g.Protect(route.TransactionsIndex, g.RequireAny(rbac.PermTransactionsView))...).Get("/transactions", h.listTransactions)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filters(w, r)
	if !ok {
		return
	}
	page, err := h.repo.ListProducts(r.Context(), access.FromContext(r.Context()), f)
	h.respond(w, page, err)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filters(w, r)
	if !ok {
		return
	}
	page, err := h.repo.ListSuppliers(r.Context(), access.FromContext(r.Context()), f)
	h.respond(w, page, err)
}

func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filters(w, r)
	if !ok {
		return
	}
	page, err := h.repo.ListStocks(r.Context(), access.FromContext(r.Context()), f)
	h.respond(w, page, err)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filters(w, r)
	if !ok {
		return
	}
	ac := access.FromContext(r.Context())
	if r.URL.Query().Get("cashier") == "me" {
		f.CashierID = &ac.IdentityID
	}
	page, err := h.repo.ListTransactions(r.Context(), ac, f)
	h.respond(w, page, err)
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request) (ListFilters, bool) {
	q := r.URL.Query()
	f := ListFilters{}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, httpx.Invalid("active must be a boolean"))
			return f, false
		}
		f.IsActive = &active
	}
	for param, dst := range map[string]**int64{"tenant_id": &f.TenantID, "store_id": &f.StoreID} {
		raw := chi.URLParam(r, param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, httpx.Invalid("%s must be an integer", param))
			return f, false
		}
		*dst = &id
	}
	return f, true
}

func (h *Handler) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		h.logger.Error("pos listing failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}
