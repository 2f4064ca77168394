package view

import (
	"bytes"
	"context"
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
	"github.com/vince123890/website-kasir/internal/menu"
	"github.com/vince123890/website-kasir/internal/rbac"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func cashierRequest(t *testing.T) (*http.Request, *shared.Session) {
	t.Helper()
	mr := miniredis.RunT(t)
	sm := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "kasir_test", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = access.WithIdentity(ctx, &access.Identity{
		ID:       7,
		Name:     "Sari",
		Role:     rbac.RoleCashier,
		TenantID: access.ID(1),
		StoreID:  access.ID(3),
	})
	ctx = route.WithCurrent(ctx, route.Current{Name: route.Dashboard})
	return req.WithContext(ctx), sess
}

func TestPageFillsNavigation(t *testing.T) {
	trees, err := menu.LoadDefault(slog.Default())
	require.NoError(t, err)
	nav := menu.NewEngine(trees, nil, route.NewRegistry(route.Paths), slog.Default())

	engine, err := NewEngine()
	require.NoError(t, err)
	engine.WithNavigation(nav)

	req, sess := cashierRequest(t)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Selamat datang"})

	td := engine.Page(req, "Dashboard", "token", nil)

	require.NotNil(t, td.User)
	assert.Equal(t, "Sari", td.User.Name)
	require.NotNil(t, td.Flash)
	assert.Equal(t, "Selamat datang", td.Flash.Message)
	assert.Nil(t, sess.PopFlash(), "page consumes the flash")

	require.NotEmpty(t, td.Menu)
	assert.Equal(t, "Dashboard", td.Menu[0].Label)
	assert.True(t, td.Menu[0].Active)
	for _, item := range td.Menu {
		assert.NotEqual(t, "Pembelian", item.Label)
	}

	require.Len(t, td.Breadcrumb, 2)
	assert.Equal(t, "/", td.Breadcrumb[0].URL)
	assert.True(t, td.Breadcrumb[1].Current)
	assert.False(t, td.Breadcrumb[0].Current)
}

func TestPageWithoutNavigation(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	req, _ := cashierRequest(t)
	td := engine.Page(req, "Login", "token", nil)

	assert.Nil(t, td.Menu)
	assert.Nil(t, td.Breadcrumb)
	assert.Equal(t, "/", td.CurrentPath)
}

func TestRenderSetsContentType(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	req, _ := cashierRequest(t)
	rr := httptest.NewRecorder()
	require.NoError(t, engine.Render(rr, "pages/login.html", engine.Page(req, "Masuk", "token", map[string]any{
		"Form":   map[string]string{"Email": "kasir@kasir.local"},
		"Errors": map[string]string{},
	})))

	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `value="token"`)
	assert.Contains(t, rr.Body.String(), "kasir@kasir.local")
}

func TestBreadcrumbMarksOnlyCurrentPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, engine.templates.ExecuteTemplate(&buf, "partials/breadcrumb", []menu.Crumb{
		{Label: "Home", URL: "/"},
		{Label: "Master Data"},
		{Label: "Produk", Current: true},
	}))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, `aria-current="page"`))
	assert.Contains(t, out, `<li aria-current="page">Produk</li>`)
	assert.Contains(t, out, `<li>Master Data</li>`)
	assert.Contains(t, out, `<a href="/">Home</a>`)
}
