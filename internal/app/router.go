package app

import (
	"io/fs"
	"log"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/auth"
	"github.com/vince123890/website-kasir/internal/guard"
	"github.com/vince123890/website-kasir/internal/observability"
	"github.com/vince123890/website-kasir/internal/pos"
	"github.com/vince123890/website-kasir/internal/rbac"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
	"github.com/vince123890/website-kasir/internal/view"
	"github.com/vince123890/website-kasir/web"
)

func init() {
	if mime.TypeByExtension(".css") != "" {
		return
	}
	if err := mime.AddExtensionType(".css", "text/css; charset=utf-8"); err != nil {
		log.Printf("app: failed to register MIME type for .css: %v", err)
	}
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Identities     access.IdentityStore
	Guard          *guard.Guard
	AuthHandler    *auth.Handler
	POSHandler     *pos.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Identities:     params.Identities,
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

	g := params.Guard
	r.With(g.Protect(route.Dashboard, g.RequireAny(rbac.PermDashboardView))...).Get("/", dashboard(params))

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		params.AuthHandler.MountPasswordRoutes(r, g)
	}
	if params.POSHandler != nil {
		params.POSHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func dashboard(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		ac := access.FromContext(r.Context())
		data := params.Templates.Page(r, "Dashboard", csrfToken, map[string]any{
			"AppEnv":       params.Config.AppEnv,
			"Capabilities": rbac.Capabilities(ac.Role),
		})
		if err := params.Templates.Render(w, "pages/dashboard.html", data); err != nil {
			params.Logger.Error("render dashboard", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
