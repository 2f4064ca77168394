package guard

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/i18n"
	"github.com/vince123890/website-kasir/internal/platform/httpx"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
)

// Authenticate rejects requests without an identity.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if access.FromContext(r.Context()).Authenticated {
			next.ServeHTTP(w, r)
			return
		}
		if g.LoginRoute != "" && !httpx.WantsJSON(r) {
			g.redirect(w, r, GateAuth, g.Routes.URL(g.LoginRoute, nil), i18n.MsgLoginRequired)
			return
		}
		g.abort(w, r, GateAuth, http.StatusUnauthorized, i18n.MsgUnauthenticated)
	})
}

// PasswordExpiry enforces the password policy. A forced change or an expired
// password redirects to the password page; a password close to expiry gets a
// single warning per session. Password pages themselves are never redirected.
func (g *Guard) PasswordExpiry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := access.IdentityFrom(r.Context())
		if id == nil {
			next.ServeHTTP(w, r)
			return
		}
		onPasswordPage := route.CurrentFrom(r.Context()).IsPasswordManagement()
		now := g.now()
		expires := id.PasswordExpiresAt

		switch {
		case id.MustChangePassword && !onPasswordPage:
			g.redirect(w, r, GatePassword, g.passwordURL(), i18n.MsgMustChangePassword)
			return
		case expires != nil && expires.Before(now) && !onPasswordPage:
			g.redirect(w, r, GatePassword, g.passwordURL(), i18n.MsgPasswordExpired)
			return
		case expires != nil && expires.After(now) && expires.Sub(now) <= g.window():
			g.warnOnce(r, DaysUntil(*expires, now))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) warnOnce(r *http.Request, days int) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		g.logger().Debug("guard: no session for expiry warning")
		return
	}
	if sess.Has(WarningShownKey) {
		return
	}
	sess.AddFlash(shared.FlashMessage{
		Kind:    shared.FlashWarning,
		Message: g.Messages.Sprintf(i18n.MsgPasswordExpiringSoon, days),
	})
	sess.Set(WarningShownKey, "1")
	g.logger().Info("guard: password expiry warning", slog.Int("days", days))
}

// DaysUntil returns the whole days left until t, rounded up.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
