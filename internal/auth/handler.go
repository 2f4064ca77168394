package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/guard"
	"github.com/vince123890/website-kasir/internal/i18n"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
	"github.com/vince123890/website-kasir/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	messages       *i18n.Printer
	routes         *route.Registry
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, messages *i18n.Printer, routes *route.Registry) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		messages:       messages,
		routes:         routes,
		validator:      validator.New(),
	}
}

// MountRoutes registers login and logout on the /auth router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(route.Named(route.Login)).Get("/login", h.showLogin)
	r.With(route.Named(route.Login)).Post("/login", h.handleLogin)
	r.With(route.Named(route.Logout)).Post("/logout", h.handleLogout)
}

// MountPasswordRoutes registers the password change pages. They pass the
// authentication and password gates only, so users without a tenant or store
// can still change their password.
func (h *Handler) MountPasswordRoutes(r chi.Router, g *guard.Guard) {
	r.With(route.Named(route.PasswordEdit), g.Authenticate, g.PasswordExpiry).Get("/password/change", h.showPassword)
	r.With(route.Named(route.PasswordUpdate), g.Authenticate, g.PasswordExpiry).Post("/password/change", h.updatePassword)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if access.FromContext(r.Context()).Authenticated {
		http.Redirect(w, r, h.routes.URL(route.Dashboard, nil), http.StatusSeeOther)
		return
	}
	h.render(w, r, "Masuk", "pages/login.html", loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := h.validate(form)
	if len(errs) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err == nil && sess != nil {
			if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
				h.logger.Error("renew session", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			h.startSession(r, sess, user)
			http.Redirect(w, r, h.routes.URL(route.Dashboard, nil), http.StatusSeeOther)
			return
		}
		if sess == nil {
			h.logger.Error("session missing during login")
		}
		errs["general"] = h.messages.Sprintf(i18n.MsgInvalidCredentials)
	}
	h.render(w, r, "Masuk", "pages/login.html", loginPageData{Form: loginForm{Email: form.Email}, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) startSession(r *http.Request, sess *shared.Session, user *User) {
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	sess.Delete(guard.WarningShownKey)
	if _, err := h.csrfManager.RotateToken(sess); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: h.messages.Sprintf(i18n.MsgWelcomeBack)})
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	h.logger.Info("user logged in", slog.Int64("user_id", user.ID))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, h.routes.URL(route.Login, nil), http.StatusSeeOther)
}

type passwordForm struct {
	Current      string `validate:"required"`
	Password     string `validate:"required,min=8,max=72"`
	Confirmation string `validate:"required,eqfield=Password"`
}

type passwordPageData struct {
	Errors map[string]string
}

func (h *Handler) showPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Ganti Password", "pages/password.html", passwordPageData{}, http.StatusOK)
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := passwordForm{
		Current:      r.PostFormValue("current_password"),
		Password:     r.PostFormValue("password"),
		Confirmation: r.PostFormValue("password_confirmation"),
	}
	errs := h.validate(form)
	if len(errs) > 0 {
		h.render(w, r, "Ganti Password", "pages/password.html", passwordPageData{Errors: errs}, http.StatusUnprocessableEntity)
		return
	}

	ac := access.FromContext(r.Context())
	_, err := h.service.ChangePassword(r.Context(), ac.IdentityID, form.Current, form.Password)
	switch {
	case errors.Is(err, ErrCurrentPasswordInvalid):
		errs["Current"] = h.messages.Sprintf(i18n.MsgCurrentPasswordInvalid)
	case errors.Is(err, ErrPasswordReused):
		errs["Password"] = err.Error()
	case err != nil:
		h.logger.Error("change password", slog.Int64("user_id", ac.IdentityID), slog.Any("error", err))
		errs["general"] = http.StatusText(http.StatusInternalServerError)
	}
	if len(errs) > 0 {
		h.render(w, r, "Ganti Password", "pages/password.html", passwordPageData{Errors: errs}, http.StatusUnprocessableEntity)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Delete(guard.WarningShownKey)
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: h.messages.Sprintf(i18n.MsgPasswordChanged)})
	}
	h.logger.Info("password changed", slog.Int64("user_id", ac.IdentityID))
	http.Redirect(w, r, h.routes.URL(route.Dashboard, nil), http.StatusSeeOther)
}

func (h *Handler) validate(form any) map[string]string {
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs[fieldErr.Field()] = fieldErr.Error()
			}
		}
	}
	return errs
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title, template string, data any, status int) {
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
	page := h.templates.Page(r, title, csrfToken, data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, page); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
