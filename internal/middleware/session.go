package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type sessionChecker interface {
	Get(ctx context.Context, token string) (*auth.Session, error)
}

type SessionMiddlewareHandler struct {
	sessions     sessionChecker
	cookieName   string
	allowedPaths map[string]bool
}

func NewSessionMiddlewareHandler(
	sessions sessionChecker,
	cookieName string,
) *SessionMiddlewareHandler {
	return &SessionMiddlewareHandler{
		sessions:   sessions,
		cookieName: cookieName,
		allowedPaths: map[string]bool{
			// register and login have to work without a session
			"/":         true,
			"/register": true,
			"/login":    true,
			"/logout":   true,
		},
	}
}

// SessionCheck resolves the session cookie and stores the session on the
// request context. Page routes without a session get redirected to the
// login page, /api routes get a structured 401 instead.
func (h *SessionMiddlewareHandler) SessionCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.session")
			defer span.End()

			token := ""
			if cookie, err := r.Cookie(h.cookieName); err == nil {
				token = cookie.Value
			}

			session, err := h.sessions.Get(ctx, token)
			if err != nil && !errors.Is(err, auth.ErrNoSession) {
				log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
			}

			if session != nil {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r.WithContext(auth.WithSession(ctx, session)))
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			log.Tracef("[no session] unauthenticated => %s", r.URL.Path)
			span.SetStatus(codes.Error, "no-session")

			if strings.HasPrefix(r.URL.Path, "/api/") {
				pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})
	}
}
