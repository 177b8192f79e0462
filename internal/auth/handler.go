package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/render"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth

type authService interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	service    authService
	renderer   render.Renderer
	metrics    *metrics.Manager
	cookieName string
}

func NewHandler(
	service authService,
	renderer render.Renderer,
	metricsManager *metrics.Manager,
	cookieName string,
) *Handler {
	return &Handler{
		service:    service,
		renderer:   renderer,
		metrics:    metricsManager,
		cookieName: cookieName,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET").Name("root")
	mainRouter.HandleFunc("/register", handler.handleRegisterPage).Methods("GET").Name("register-page")
	mainRouter.HandleFunc("/register", handler.handleRegister).Methods("POST").Name("register")
	mainRouter.HandleFunc("/login", handler.handleLoginPage).Methods("GET").Name("login-page")
	mainRouter.HandleFunc("/login", handler.handleLogin).Methods("POST").Name("login")
	mainRouter.HandleFunc("/logout", handler.handleLogout).Methods("GET").Name("logout")
}

type authPageData struct {
	Session *Session // always nil, register and login render for logged out visitors
	Flash   *render.Flash
	Error   string
}

func (handler *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if _, ok := SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (handler *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, "register.html", authPageData{
		Flash: render.PopFlash(w, r),
	})
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("register failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	username := r.Form.Get("username")
	if username == "" {
		handler.renderer.Render(w, "register.html", authPageData{Error: "username empty"})
		return
	}

	_, err := handler.service.Register(
		ctx,
		username,
		r.Form.Get("password"),
		r.Form.Get("confirm_password"),
	)
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		handler.renderer.Render(w, "register.html", authPageData{Error: "Passwords do not match"})
		return
	case errors.Is(err, ErrUsernameTaken):
		handler.renderer.Render(w, "register.html", authPageData{Error: "Username already exists"})
		return
	case err != nil:
		log.Errorf("failed to register user [%s]: %s", username, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRegistrations.Inc()

	render.SetFlash(w, "success", "Registration successful! Please login.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (handler *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, "login.html", authPageData{
		Flash: render.PopFlash(w, r),
	})
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("login failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	username := r.Form.Get("username")
	password := r.Form.Get("password")

	token, err := handler.service.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			handler.renderer.Render(w, "login.html", authPageData{Error: "Invalid username or password"})
			return
		}
		log.Errorf("login failed for user [%s]: %s", username, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     handler.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	handler.metrics.CounterLogins.Inc()

	log.Tracef("new login success: %s", username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if cookie, err := r.Cookie(handler.cookieName); err == nil {
		if err := handler.service.Logout(ctx, cookie.Value); err != nil {
			log.Errorf("logout, clear session: %s", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     handler.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
