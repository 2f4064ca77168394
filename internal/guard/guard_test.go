package guard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/i18n"
	"github.com/vince123890/website-kasir/internal/platform/httpx"
	"github.com/vince123890/website-kasir/internal/rbac"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type denial struct {
	gate string
	code int
}

type fakeRecorder struct {
	mu      sync.Mutex
	denials []denial
}

func (f *fakeRecorder) ObserveGuardDenial(gate string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denials = append(f.denials, denial{gate, code})
}

type harness struct {
	t        *testing.T
	sessions *shared.SessionManager
	guard    *Guard
	recorder *fakeRecorder
	cookie   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rec := &fakeRecorder{}
	return &harness{
		t:        t,
		sessions: shared.NewSessionManager(client, "kasir_test", "secret", time.Hour, false),
		recorder: rec,
		guard: &Guard{
			Messages: i18n.NewPrinter("en"),
			Recorder: rec,
			Routes:   route.NewRegistry(route.Paths),
			Now:      func() time.Time { return fixedNow },
		},
	}
}

// serve runs one request through session loading, identity, route naming,
// the guard chain and a final handler, then commits the session.
func (h *harness) serve(id *access.Identity, name, pattern, target string, header http.Header) (*httptest.ResponseRecorder, *shared.Session, bool) {
	h.t.Helper()
	reached := false
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	var sess *shared.Session
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			var err error
			sess, err = h.sessions.Load(req.Context(), req)
			require.NoError(h.t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			ctx = access.WithIdentity(ctx, id)
			next.ServeHTTP(w, req.WithContext(ctx))
			require.NoError(h.t, h.sessions.Commit(req.Context(), w, req, sess))
		})
	})
	r.With(route.Named(name)).With(h.guard.Chain()...).Get(pattern, final)
	r.With(route.Named(name)).With(h.guard.Chain()...).Post(pattern, final)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	if h.cookie != "" {
		req.AddCookie(&http.Cookie{Name: h.sessions.CookieName(), Value: h.cookie})
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	h.cookie = sess.ID
	return rr, sess, reached
}

func kasir() *access.Identity {
	return &access.Identity{ID: 7, Role: rbac.RoleCashier, TenantID: access.ID(5), StoreID: access.ID(12)}
}

func TestCashierTargetingForeignStoreIsForbidden(t *testing.T) {
	h := newHarness(t)

	rr, _, reached := h.serve(kasir(), route.StoreStocksIndex, "/stores/{store_id}/stocks", "/stores/99/stocks", nil)
	require.False(t, reached)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), i18n.MsgStoreMismatch)
	assert.Equal(t, []denial{{GateStore, http.StatusForbidden}}, h.recorder.denials)

	rr, _, reached = h.serve(kasir(), route.StoreStocksIndex, "/stores/{store_id}/stocks", "/stores/12/stocks", nil)
	require.True(t, reached)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestSaaSAdminWithoutTenantPasses(t *testing.T) {
	h := newHarness(t)
	admin := &access.Identity{ID: 1, Role: rbac.RoleSaaSAdmin}

	rr, _, reached := h.serve(admin, route.TenantSuppliersIndex, "/tenants/{tenant_id}/suppliers", "/tenants/44/suppliers", nil)
	require.True(t, reached)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, h.recorder.denials)
}

func TestExpiryWarningIsShownOncePerSession(t *testing.T) {
	h := newHarness(t)
	id := kasir()
	expires := fixedNow.Add(3 * 24 * time.Hour)
	id.PasswordExpiresAt = &expires

	rr, sess, reached := h.serve(id, route.Dashboard, "/", "/", nil)
	require.True(t, reached)
	require.Equal(t, http.StatusOK, rr.Code)
	flashes := sess.PeekFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashWarning, flashes[0].Kind)
	assert.Contains(t, flashes[0].Message, "3 days")
	assert.True(t, sess.Has(WarningShownKey))

	_, sess, reached = h.serve(id, route.Dashboard, "/", "/", nil)
	require.True(t, reached)
	flashes = sess.PeekFlashes()
	require.Len(t, flashes, 1, "only the flash carried over from the first request")

	_, sess, _ = h.serve(id, route.Dashboard, "/", "/", nil)
	require.Empty(t, sess.PeekFlashes())
}

func TestPasswordPolicyBranches(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	soon := fixedNow.Add(36 * time.Hour)
	later := fixedNow.Add(30 * 24 * time.Hour)
	atNow := fixedNow

	cases := []struct {
		name     string
		must     bool
		expires  *time.Time
		route    string
		redirect bool
		message  string
	}{
		{"must change", true, nil, route.Dashboard, true, i18n.MsgMustChangePassword},
		{"must change wins over expired", true, &past, route.Dashboard, true, i18n.MsgMustChangePassword},
		{"expired", false, &past, route.Dashboard, true, i18n.MsgPasswordExpired},
		{"must change on password page", true, nil, route.PasswordEdit, false, ""},
		{"expired on password page", false, &past, route.PasswordUpdate, false, ""},
		{"expiring soon", false, &soon, route.Dashboard, false, "Your password will expire in 2 days. Please change it soon."},
		{"must change and expiring soon on password page", true, &soon, route.PasswordEdit, false, "Your password will expire in 2 days. Please change it soon."},
		{"expires exactly now", false, &atNow, route.Dashboard, false, ""},
		{"far from expiry", false, &later, route.Dashboard, false, ""},
		{"no expiry", false, nil, route.Dashboard, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			id := kasir()
			id.MustChangePassword = tc.must
			id.PasswordExpiresAt = tc.expires

			rr, sess, reached := h.serve(id, tc.route, "/x", "/x", nil)
			if tc.redirect {
				require.False(t, reached)
				require.Equal(t, http.StatusSeeOther, rr.Code)
				require.Equal(t, "/password/change", rr.Header().Get("Location"))
			} else {
				require.True(t, reached)
			}
			flashes := sess.PeekFlashes()
			if tc.message == "" {
				require.Empty(t, flashes)
				return
			}
			require.Len(t, flashes, 1)
			assert.Equal(t, tc.message, flashes[0].Message)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)

	rr, _, reached := h.serve(nil, route.Dashboard, "/", "/", nil)
	require.False(t, reached)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _, _ = h.serve(nil, route.Dashboard, "/", "/", http.Header{"Accept": {"application/json"}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, i18n.MsgUnauthenticated, problem.Detail)

	h.guard.LoginRoute = route.Login
	rr, sess, _ := h.serve(nil, route.Dashboard, "/", "/", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/auth/login", rr.Header().Get("Location"))
	require.Len(t, sess.PeekFlashes(), 1)
}

func TestMembership(t *testing.T) {
	owner := &access.Identity{ID: 2, Role: rbac.RoleTenantOwner, TenantID: access.ID(5)}
	noTenant := &access.Identity{ID: 3, Role: rbac.RoleStoreAdmin, StoreID: access.ID(12)}
	noStore := &access.Identity{ID: 4, Role: rbac.RoleStoreAdmin, TenantID: access.ID(5)}

	cases := []struct {
		name   string
		id     *access.Identity
		target string
		code   int
	}{
		{"owner in own tenant", owner, "/tenants/5/suppliers", http.StatusOK},
		{"owner in foreign tenant", owner, "/tenants/6/suppliers", http.StatusForbidden},
		{"owner without store passes store gate", owner, "/tenants/5/suppliers?store_id=99", http.StatusOK},
		{"no tenant", noTenant, "/tenants/5/suppliers", http.StatusForbidden},
		{"no store", noStore, "/tenants/5/suppliers", http.StatusForbidden},
		{"cashier foreign tenant", kasir(), "/tenants/6/suppliers", http.StatusForbidden},
		{"cashier store via query", kasir(), "/tenants/5/suppliers?store_id=99", http.StatusForbidden},
		{"cashier own store via query", kasir(), "/tenants/5/suppliers?store_id=12", http.StatusOK},
		{"unparsable target", kasir(), "/tenants/abc/suppliers", http.StatusForbidden},
		{"padded target", kasir(), "/tenants/5/suppliers?store_id=%2012", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			rr, _, _ := h.serve(tc.id, route.TenantSuppliersIndex, "/tenants/{tenant_id}/suppliers", tc.target, nil)
			require.Equal(t, tc.code, rr.Code)
		})
	}
}

func TestChainIsIdempotent(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 2; i++ {
		rr, _, reached := h.serve(kasir(), route.StoreStocksIndex, "/stores/{store_id}/stocks", "/stores/99/stocks", nil)
		require.False(t, reached)
		require.Equal(t, http.StatusForbidden, rr.Code)
	}
	require.Len(t, h.recorder.denials, 2)
}

func TestRequireCapabilities(t *testing.T) {
	g := &Guard{Messages: i18n.NewPrinter("en")}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	run := func(mw func(http.Handler) http.Handler, id *access.Identity) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(access.WithIdentity(context.Background(), id))
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusForbidden, run(g.RequireAny(rbac.PermPurchasesView), kasir()))
	assert.Equal(t, http.StatusOK, run(g.RequireAny(rbac.PermPurchasesView, " POS.ACCESS "), kasir()))
	assert.Equal(t, http.StatusForbidden, run(g.RequireAll(rbac.PermPOSAccess, rbac.PermPurchasesView), kasir()))
	assert.Equal(t, http.StatusOK, run(g.RequireAll(rbac.PermPOSAccess, rbac.PermTransactionsView), kasir()))
	assert.Equal(t, http.StatusOK, run(g.RequireAny(), kasir()))
	assert.Equal(t, http.StatusForbidden, run(g.RequireAny(rbac.PermPOSAccess), nil))
}

func TestDaysUntilRoundsUp(t *testing.T) {
	assert.Equal(t, 3, DaysUntil(fixedNow.Add(72*time.Hour), fixedNow))
	assert.Equal(t, 3, DaysUntil(fixedNow.Add(49*time.Hour), fixedNow))
	assert.Equal(t, 1, DaysUntil(fixedNow.Add(time.Minute), fixedNow))
}

func TestProtectNamesRouteBeforeGates(t *testing.T) {
	h := newHarness(t)
	id := kasir()
	id.MustChangePassword = true

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(access.WithIdentity(req.Context(), id)))
		})
	})
	r.With(h.guard.Protect(route.PasswordEdit)...).Get("/password/change", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, route.PasswordEdit, route.CurrentFrom(r.Context()).Name)
		w.WriteHeader(http.StatusOK)
	})
	r.With(h.guard.Protect(route.Dashboard)...).Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/password/change", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestMembershipReadsJSONBody(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		code        int
	}{
		{"own store", "application/json", `{"store_id": 12, "total": 5000}`, http.StatusOK},
		{"foreign store", "application/json", `{"store_id": 99}`, http.StatusForbidden},
		{"foreign store as string", "application/json; charset=utf-8", `{"store_id": "99"}`, http.StatusForbidden},
		{"foreign tenant", "application/json", `{"tenant_id": 6, "store_id": 12}`, http.StatusForbidden},
		{"fractional target", "application/json", `{"store_id": 12.5}`, http.StatusForbidden},
		{"object target", "application/json", `{"store_id": {"id": 12}}`, http.StatusForbidden},
		{"malformed body", "application/json", `{"store_id": 99`, http.StatusForbidden},
		{"null target", "application/json", `{"store_id": null}`, http.StatusOK},
		{"no target", "application/json", `{"total": 5000}`, http.StatusOK},
		{"empty body", "application/json", ``, http.StatusOK},
		{"not json", "text/plain", `{"store_id": 99}`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			var seen string
			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(access.WithIdentity(req.Context(), kasir())))
				})
			})
			r.With(h.guard.TenantMember, h.guard.StoreMember).Post("/transactions", func(w http.ResponseWriter, req *http.Request) {
				data, err := io.ReadAll(req.Body)
				require.NoError(t, err)
				seen = string(data)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			require.Equal(t, tc.code, rr.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, tc.body, seen, "handler still reads the full body")
			}
		})
	}
}

func TestQueryTargetWinsOverJSONBody(t *testing.T) {
	h := newHarness(t)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(access.WithIdentity(req.Context(), kasir())))
		})
	})
	r.With(h.guard.StoreMember).Post("/transactions", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions?store_id=99", strings.NewReader(`{"store_id": 12}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}
