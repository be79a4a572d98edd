package recap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stmilos/yearinsport/internal/strava"
	"github.com/stmilos/yearinsport/internal/telemetry/metrics"
	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=sync_mocks_test.go -package=recap

type activityStore interface {
	ListForYear(ctx context.Context, athleteID int64, year int) ([]ActivityRecord, error)
	HasAny(ctx context.Context, athleteID int64, year int) (bool, error)
	Upsert(ctx context.Context, rec ActivityRecord) error
}

type activityProvider interface {
	ActivitiesForYear(ctx context.Context, accessToken string, year int) ([]strava.Activity, error)
}

type tokenSource interface {
	GetValidToken(ctx context.Context, athleteID int64) (string, error)
}

// Syncer reconciles the local activity cache with the upstream API. Reads
// are served from the cache whenever the year has any rows; a sync fetches
// the whole year and upserts record by record, so a mid-sync failure keeps
// everything persisted so far.
type Syncer struct {
	store    activityStore
	provider activityProvider
	tokens   tokenSource
	metrics  *metrics.Manager
	nowFunc  func() time.Time
}

func NewSyncer(
	store activityStore,
	provider activityProvider,
	tokens tokenSource,
	metricsManager *metrics.Manager,
) *Syncer {
	return &Syncer{
		store:    store,
		provider: provider,
		tokens:   tokens,
		metrics:  metricsManager,
		nowFunc:  time.Now,
	}
}

// GetOrSync returns the athlete's activities for the year. With a warm
// cache and forceRefresh false it never touches the upstream; otherwise it
// runs a full-year sync and returns the freshly fetched records.
func (s *Syncer) GetOrSync(ctx context.Context, athleteID int64, year int, forceRefresh bool) (_ []ActivityRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recap.syncer.getOrSync")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", athleteID))
	span.SetAttributes(attribute.Int("year", year))
	span.SetAttributes(attribute.Bool("forceRefresh", forceRefresh))

	if !forceRefresh {
		cached, err := s.store.HasAny(ctx, athleteID, year)
		if err != nil {
			return nil, fmt.Errorf("check cache: %w", err)
		}
		if cached {
			s.metrics.CounterCacheHits.Inc()
			records, err := s.store.ListForYear(ctx, athleteID, year)
			if err != nil {
				return nil, fmt.Errorf("list cached: %w", err)
			}
			return records, nil
		}
		s.metrics.CounterCacheMisses.Inc()
	}

	return s.Sync(ctx, athleteID, year)
}

// Sync fetches the athlete's full year from the upstream and upserts every
// activity into the cache. Returned records go through the same speed
// normalization the store applies on read.
func (s *Syncer) Sync(ctx context.Context, athleteID int64, year int) (_ []ActivityRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recap.syncer.sync")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.metrics.CounterSyncRuns.Inc()
	syncStart := s.nowFunc()
	defer func() {
		s.metrics.HistogramSyncDuration.Observe(time.Since(syncStart).Seconds())
	}()

	accessToken, err := s.tokens.GetValidToken(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	activities, err := s.provider.ActivitiesForYear(ctx, accessToken, year)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	fetchedAt := s.nowFunc()
	records := make([]ActivityRecord, 0, len(activities))
	for _, a := range activities {
		rec := RecordFromUpstream(a, athleteID, fetchedAt)
		if err := s.store.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("store activity %d: %w", a.ID, err)
		}
		records = append(records, rec)
		s.metrics.CounterSyncedActivities.Inc()
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartTimeLocal > records[j].StartTimeLocal
	})

	log.Debugf("sync: athlete %d, year %d, %d activities", athleteID, year, len(records))

	return records, nil
}
