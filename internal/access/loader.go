package access

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vince123890/website-kasir/internal/shared"
)

// Loader resolves the session-bound identity once per request and stores it
// in the request context for every downstream component.
type Loader struct {
	Store  IdentityStore
	Logger *slog.Logger
}

// Middleware installs the identity on the request context. Requests without a
// valid session user continue unauthenticated.
func (l Loader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		identity, err := l.Store.FindIdentity(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrIdentityNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if l.Logger != nil {
				l.Logger.Error("load identity", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
