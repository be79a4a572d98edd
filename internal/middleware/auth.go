package middleware

import (
	"context"
	"net/http"

	"github.com/stmilos/yearinsport/internal/auth"
	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type athleteIDCtxKey struct{}

// AthleteIDFromContext returns the athlete id stored by the auth middleware.
func AthleteIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(athleteIDCtxKey{}).(int64)
	return id, ok
}

// ContextWithAthleteID is exported for handler tests, which have no auth
// middleware in front of them.
func ContextWithAthleteID(ctx context.Context, athleteID int64) context.Context {
	return context.WithValue(ctx, athleteIDCtxKey{}, athleteID)
}

type AuthMiddlewareHandler struct {
	loginChecker auth.Checker
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(loginChecker auth.Checker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		allowedPaths: map[string]bool{
			"/login/strava": true,
			"/version":      true,
			"/ping":         true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get("X-YIS-TOKEN")
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			athleteID, err := h.loginChecker.GetSessionAthleteID(ctx, authToken)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ContextWithAthleteID(ctx, athleteID)))
		})
	}
}
