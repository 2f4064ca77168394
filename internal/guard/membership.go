package guard

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/i18n"
)

// Request parameters naming a targeted tenant or store.
const (
	TenantParam = "tenant_id"
	StoreParam  = "store_id"
)

// TenantMember requires a tenant and, when the request targets one, that it
// is the caller's own. SaaS administrators pass.
func (g *Guard) TenantMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := access.FromContext(r.Context())
		if ac.BypassesTenantScope() {
			next.ServeHTTP(w, r)
			return
		}
		own, ok := ac.Tenant()
		if !ok {
			g.abort(w, r, GateTenant, http.StatusForbidden, i18n.MsgNoTenant)
			return
		}
		if !targetMatches(r, TenantParam, own) {
			g.abort(w, r, GateTenant, http.StatusForbidden, i18n.MsgTenantMismatch)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StoreMember requires a store and, when the request targets one, that it is
// the caller's own. SaaS administrators and tenant owners pass.
func (g *Guard) StoreMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := access.FromContext(r.Context())
		if ac.BypassesStoreScope() {
			next.ServeHTTP(w, r)
			return
		}
		own, ok := ac.Store()
		if !ok {
			g.abort(w, r, GateStore, http.StatusForbidden, i18n.MsgNoStore)
			return
		}
		if !targetMatches(r, StoreParam, own) {
			g.abort(w, r, GateStore, http.StatusForbidden, i18n.MsgStoreMismatch)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// maxTargetBody bounds how much of a JSON body is read to find a target.
const maxTargetBody = 1 << 20

// targetMatches compares the targeted ID, if any, with own. The route
// parameter wins over query and form fields, which win over a JSON body
// field. Values that are not integers never match.
func targetMatches(r *http.Request, name string, own int64) bool {
	raw := chi.URLParam(r, name)
	if raw == "" {
		raw = r.FormValue(name)
	}
	if raw == "" {
		var ok bool
		if raw, ok = jsonTarget(r, name); !ok {
			return false
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	target, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return target == own
}

// jsonTarget reads name from a JSON object body and puts the body back for
// the handler. ok is false when the body cannot be inspected; a missing field
// or a null yields "".
func jsonTarget(r *http.Request, name string) (string, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", true
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return "", true
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxTargetBody+1))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil || len(data) > maxTargetBody {
		return "", false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", false
	}
	field, present := fields[name]
	if !present {
		return "", true
	}
	var value any
	dec := json.NewDecoder(bytes.NewReader(field))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case nil:
		return "", true
	case json.Number:
		return v.String(), true
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	default:
		return "", false
	}
}
