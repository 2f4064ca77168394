package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/guard"
	"github.com/vince123890/website-kasir/internal/i18n"
	"github.com/vince123890/website-kasir/internal/menu"
	"github.com/vince123890/website-kasir/internal/observability"
	"github.com/vince123890/website-kasir/internal/rbac"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
	"github.com/vince123890/website-kasir/internal/view"
	_ "github.com/vince123890/website-kasir/testing"
)

type identities map[int64]*access.Identity

func (m identities) FindIdentity(ctx context.Context, id int64) (*access.Identity, error) {
	if identity, ok := m[id]; ok {
		return identity, nil
	}
	return nil, access.ErrIdentityNotFound
}

type testApp struct {
	handler  http.Handler
	sessions *shared.SessionManager
	metrics  *observability.Metrics
}

func newTestApp(t *testing.T, users identities) *testApp {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "kasir_session", "secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	routes := route.NewRegistry(route.Paths)
	trees, err := menu.LoadDefault(logger)
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	templates.WithNavigation(menu.NewEngine(trees, nil, routes, logger).WithRecorder(metrics))

	g := &guard.Guard{
		Logger:     logger,
		Messages:   i18n.NewPrinter("en"),
		Recorder:   metrics,
		Routes:     routes,
		LoginRoute: route.Login,
	}
	handler := NewRouter(RouterParams{
		Logger:         logger,
		Config:         &Config{AppEnv: "test"},
		Templates:      templates,
		SessionManager: sessions,
		CSRFManager:    shared.NewCSRFManager("csrf"),
		Identities:     users,
		Guard:          g,
		Metrics:        metrics,
	})
	return &testApp{handler: handler, sessions: sessions, metrics: metrics}
}

// login stores a session for user and returns its cookie value.
func (a *testApp) login(t *testing.T, user string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := a.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser(user)
	require.NoError(t, a.sessions.Commit(context.Background(), httptest.NewRecorder(), req, sess))
	return sess.ID
}

func (a *testApp) get(t *testing.T, target, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: a.sessions.CookieName(), Value: cookie})
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, identities{})
	rr := app.get(t, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestDashboardRedirectsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t, identities{})
	rr := app.get(t, "/", "")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login", rr.Header().Get("Location"))
}

func TestDashboardRendersRoleMenu(t *testing.T) {
	app := newTestApp(t, identities{
		9: {ID: 9, Name: "Sari", Role: rbac.RoleCashier, TenantID: access.ID(5), StoreID: access.ID(12)},
	})
	cookie := app.login(t, "9")

	rr := app.get(t, "/", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Point of Sale")
	assert.Contains(t, body, "Sari")
	assert.NotContains(t, body, "Purchase Order")
	assert.Contains(t, body, `class="breadcrumb"`)
}

func TestPasswordPolicyRedirectsDashboard(t *testing.T) {
	app := newTestApp(t, identities{
		9: {ID: 9, Role: rbac.RoleCashier, TenantID: access.ID(5), StoreID: access.ID(12), MustChangePassword: true},
	})
	cookie := app.login(t, "9")

	rr := app.get(t, "/", cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/password/change", rr.Header().Get("Location"))
}

func TestUserWithoutStoreIsForbidden(t *testing.T) {
	app := newTestApp(t, identities{
		9: {ID: 9, Role: rbac.RoleStoreAdmin, TenantID: access.ID(5)},
	})
	cookie := app.login(t, "9")

	rr := app.get(t, "/", cookie)
	require.Equal(t, http.StatusForbidden, rr.Code)

	metrics := app.get(t, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `kasir_guard_denials_total{code="403",gate="store"} 1`)
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t, identities{})
	rr := app.get(t, "/static/css/app.css", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/css"))
}

func TestCSRFRejectsUnsignedPost(t *testing.T) {
	app := newTestApp(t, identities{})
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(""))
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}
