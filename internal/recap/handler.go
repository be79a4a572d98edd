package recap

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/stmilos/yearinsport/internal/athlete"
	"github.com/stmilos/yearinsport/internal/middleware"
	"github.com/stmilos/yearinsport/internal/strava"
	"github.com/stmilos/yearinsport/internal/telemetry/tracing"
	"github.com/stmilos/yearinsport/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type recapSyncer interface {
	GetOrSync(ctx context.Context, athleteID int64, year int, forceRefresh bool) ([]ActivityRecord, error)
	Sync(ctx context.Context, athleteID int64, year int) ([]ActivityRecord, error)
}

type athleteGetter interface {
	Get(ctx context.Context, id int64) (*athlete.Athlete, error)
}

type syncStateProvider interface {
	LastSyncedAt(ctx context.Context, athleteID int64) (*time.Time, error)
}

type Handler struct {
	syncer    recapSyncer
	athletes  athleteGetter
	syncState syncStateProvider
	tokens    tokenSource
	photos    photoProvider
	attacher  *PhotoAttacher
}

func NewHandler(
	syncer recapSyncer,
	athletes athleteGetter,
	syncState syncStateProvider,
	tokens tokenSource,
	photos photoProvider,
	attacher *PhotoAttacher,
) *Handler {
	return &Handler{
		syncer:    syncer,
		athletes:  athletes,
		syncState: syncState,
		tokens:    tokens,
		photos:    photos,
		attacher:  attacher,
	}
}

// AthleteProfile is the athlete projection shown on the dashboard, with the
// full name split so the view can greet by first name.
type AthleteProfile struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	ProfileURL string `json:"profileUrl"`
}

func profileOf(a *athlete.Athlete) AthleteProfile {
	return AthleteProfile{
		ID:         a.ID,
		Name:       a.Name,
		FirstName:  a.FirstName(),
		LastName:   a.LastName(),
		ProfileURL: a.ProfileURL,
	}
}

// DashboardResponse is the composite read behind the recap view.
type DashboardResponse struct {
	Athlete               AthleteProfile   `json:"athlete"`
	Records               []ActivityRecord `json:"records"`
	Totals                Totals           `json:"totals"`
	CountsBySport         map[string]int   `json:"countsBySport"`
	CountsByMonth         [12]int          `json:"countsByMonth"`
	CumulativeMonthlyTime [12]int          `json:"cumulativeMonthlyTime"`
	Highlights            []Highlight      `json:"highlights"`
	LastSyncedAt          *time.Time       `json:"lastSyncedAt"`
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recap.dashboard")
	defer span.End()

	athleteID, ok := middleware.AthleteIDFromContext(ctx)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	year, ok := yearFromRequest(w, r)
	if !ok {
		return
	}

	records, err := handler.syncer.GetOrSync(ctx, athleteID, year, false)
	if err != nil {
		writeRecapError(w, "get activities", err)
		return
	}

	athleteProfile, err := handler.athletes.Get(ctx, athleteID)
	if err != nil {
		writeRecapError(w, "get athlete", err)
		return
	}

	lastSyncedAt, err := handler.syncState.LastSyncedAt(ctx, athleteID)
	if err != nil {
		writeRecapError(w, "get last sync time", err)
		return
	}

	highlights := ComputeHighlights(records, year)

	// photos are decorative, a missing token only means bare cards
	if accessToken, err := handler.tokens.GetValidToken(ctx, athleteID); err != nil {
		log.Warnf("dashboard: no access token for photos, athlete %d: %s", athleteID, err)
	} else {
		handler.attacher.Attach(ctx, accessToken, highlights)
	}

	pkg.SendJSON(w, http.StatusOK, DashboardResponse{
		Athlete:               profileOf(athleteProfile),
		Records:               records,
		Totals:                TotalsFor(records),
		CountsBySport:         CountsBySport(records),
		CountsByMonth:         CountsByMonth(records),
		CumulativeMonthlyTime: CumulativeMonthlyTime(records),
		Highlights:            highlights,
		LastSyncedAt:          lastSyncedAt,
	})
}

func (handler *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recap.sync")
	defer span.End()

	athleteID, ok := middleware.AthleteIDFromContext(ctx)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	year, ok := yearFromRequest(w, r)
	if !ok {
		return
	}

	records, err := handler.syncer.Sync(ctx, athleteID, year)
	if err != nil {
		writeRecapError(w, "sync activities", err)
		return
	}

	pkg.SendJSON(w, http.StatusOK, map[string]int{
		"syncedCount": len(records),
	})
}

func (handler *Handler) HandlePhotos(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recap.photos")
	defer span.End()

	athleteID, ok := middleware.AthleteIDFromContext(ctx)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	activityID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid activity id", http.StatusBadRequest)
		return
	}

	accessToken, err := handler.tokens.GetValidToken(ctx, athleteID)
	if err != nil {
		writeRecapError(w, "get access token", err)
		return
	}

	photos, err := handler.photos.GetPhotos(ctx, accessToken, activityID)
	if err != nil {
		// the provider is fail-soft already, this is belt and braces
		log.Errorf("get photos for activity %d: %s", activityID, err)
		photos = []strava.Photo{}
	}

	pkg.SendJSON(w, http.StatusOK, photos)
}

func yearFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 2000 || year > 2100 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return 0, false
	}
	return year, true
}

func writeRecapError(w http.ResponseWriter, action string, err error) {
	log.Errorf("%s: %s", action, err)
	switch {
	case errors.Is(err, strava.ErrAuthExpired), errors.Is(err, athlete.ErrAthleteNotFound):
		http.Error(w, "needs sign-in", http.StatusUnauthorized)
	case errors.Is(err, strava.ErrUpstreamUnavailable):
		http.Error(w, "upstream unavailable, retry later", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
