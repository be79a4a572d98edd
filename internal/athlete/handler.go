package athlete

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stmilos/yearinsport/internal/auth"
	"github.com/stmilos/yearinsport/internal/middleware"
	"github.com/stmilos/yearinsport/internal/strava"
	"github.com/stmilos/yearinsport/internal/telemetry/tracing"
	"github.com/stmilos/yearinsport/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const sessionTokenHeader = "X-YIS-TOKEN"

type codeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*strava.TokenExchangeResponse, error)
}

type athleteStore interface {
	Upsert(ctx context.Context, a Athlete) error
	Get(ctx context.Context, id int64) (*Athlete, error)
}

type Handler struct {
	exchanger   codeExchanger
	store       athleteStore
	authService *auth.Service
}

func NewHandler(exchanger codeExchanger, store athleteStore, authService *auth.Service) *Handler {
	return &Handler{
		exchanger:   exchanger,
		store:       store,
		authService: authService,
	}
}

// HandleLogin exchanges an oauth authorization code for tokens, stores the
// athlete profile with its credentials, and opens a session.
func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "athleteHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type loginRequest struct {
		Code string `json:"code"`
	}

	var loginReq loginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}
	if loginReq.Code == "" {
		http.Error(w, "error, code empty", http.StatusBadRequest)
		return
	}

	exchange, err := handler.exchanger.ExchangeCode(ctx, loginReq.Code)
	if err != nil {
		log.Errorf("login, code exchange: %s", err)
		if errors.Is(err, strava.ErrAuthExpired) {
			http.Error(w, "error, code rejected", http.StatusUnauthorized)
		} else {
			http.Error(w, "login failed", http.StatusBadGateway)
		}
		return
	}
	if exchange.Athlete == nil {
		log.Error("login, code exchange returned no athlete")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	span.SetAttributes(attribute.Int64("athlete.id", exchange.Athlete.ID))

	a := Athlete{
		ID:             exchange.Athlete.ID,
		Name:           strings.TrimSpace(exchange.Athlete.Firstname + " " + exchange.Athlete.Lastname),
		ProfileURL:     exchange.Athlete.Profile,
		AccessToken:    exchange.AccessToken,
		RefreshToken:   exchange.RefreshToken,
		TokenExpiresAt: exchange.ExpiresAt,
	}
	if err := handler.store.Upsert(ctx, a); err != nil {
		log.Errorf("login, store athlete %d: %s", a.ID, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	token, err := handler.authService.Login(ctx, a.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success, athlete %d", a.ID)
	pkg.SendJSON(w, http.StatusOK, struct {
		Token   string  `json:"token"`
		Athlete Athlete `json:"athlete"`
	}{
		Token:   token,
		Athlete: a,
	})
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "athleteHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(sessionTokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.authService.Logout(r.Context(), authToken); err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Printf("logout for [%s] success", authToken)
	pkg.WriteTextResponseOK(w, "logged-out")
}

// HandleWhoAmI returns the signed-in athlete's stored profile.
func (handler *Handler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "athleteHandler.whoAmI")
	defer span.End()

	athleteID, ok := middleware.AthleteIDFromContext(ctx)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	a, err := handler.store.Get(ctx, athleteID)
	if err != nil {
		if errors.Is(err, ErrAthleteNotFound) {
			http.Error(w, "needs sign-in", http.StatusUnauthorized)
			return
		}
		log.Errorf("whoami, get athlete %d: %s", athleteID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.SendJSON(w, http.StatusOK, a)
}
