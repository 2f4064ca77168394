// Package guard holds the request gates that run before any tenant or store
// data is touched: authentication, password policy, tenant membership and
// store membership, in that order.
package guard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/i18n"
	"github.com/vince123890/website-kasir/internal/platform/httpx"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
)

// Gate names used in logs and metrics.
const (
	GateAuth       = "auth"
	GatePassword   = "password"
	GateTenant     = "tenant"
	GateStore      = "store"
	GateCapability = "capability"
)

// DefaultWarningWindow is how long before expiry users start being warned.
const DefaultWarningWindow = 7 * 24 * time.Hour

// WarningShownKey marks a session in which the expiry warning was already shown.
const WarningShownKey = "password_expiry_warning_shown"

// Recorder observes denied requests.
type Recorder interface {
	ObserveGuardDenial(gate string, code int)
}

// Guard builds the gate middlewares. The zero value works: it logs to the
// default logger, prints English and uses the wall clock.
type Guard struct {
	Logger        *slog.Logger
	Messages      *i18n.Printer
	Recorder      Recorder
	Routes        *route.Registry
	Now           func() time.Time
	WarningWindow time.Duration
	// LoginRoute, when set, makes Authenticate redirect page requests there
	// instead of answering 401.
	LoginRoute string
	// PasswordRoute is where the password policy sends users. Defaults to
	// route.PasswordEdit.
	PasswordRoute string
}

// Chain returns the gates in their fixed order.
func (g *Guard) Chain() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		g.Authenticate,
		g.PasswordExpiry,
		g.TenantMember,
		g.StoreMember,
	}
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Guard) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Guard) window() time.Duration {
	if g.WarningWindow <= 0 {
		return DefaultWarningWindow
	}
	return g.WarningWindow
}

func (g *Guard) passwordURL() string {
	name := g.PasswordRoute
	if name == "" {
		name = route.PasswordEdit
	}
	return g.Routes.URL(name, nil)
}

// abort ends the request with status and a localized message.
func (g *Guard) abort(w http.ResponseWriter, r *http.Request, gate string, status int, key string) {
	ac := access.FromContext(r.Context())
	g.logger().Info("guard: request denied",
		slog.String("gate", gate),
		slog.Int("status", status),
		slog.String("route", route.CurrentFrom(r.Context()).Name),
		slog.Int64("identity_id", ac.IdentityID),
	)
	g.record(gate, status)
	msg := g.Messages.Sprintf(key)
	if httpx.WantsJSON(r) {
		httpx.Problem(w, status, http.StatusText(status), msg)
		return
	}
	http.Error(w, msg, status)
}

// redirect sends the user to url with a warning flash.
func (g *Guard) redirect(w http.ResponseWriter, r *http.Request, gate, url, key string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: g.Messages.Sprintf(key)})
	}
	g.record(gate, http.StatusSeeOther)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (g *Guard) record(gate string, status int) {
	if g.Recorder != nil {
		g.Recorder.ObserveGuardDenial(gate, status)
	}
}

// Protect returns the middleware stack of a guarded route: the route name
// first, so the gates can see it, then the chain, then extra.
func (g *Guard) Protect(name string, extra ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	stack := append([]func(http.Handler) http.Handler{route.Named(name)}, g.Chain()...)
	return append(stack, extra...)
}
