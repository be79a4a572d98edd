package recap

import (
	"context"
	"sync"

	"github.com/stmilos/yearinsport/internal/strava"
	"github.com/stmilos/yearinsport/internal/telemetry/metrics"
	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const photoSizeKey = "600"

type photoProvider interface {
	GetPhotos(ctx context.Context, accessToken string, activityID int64) ([]strava.Photo, error)
}

// PhotoAttacher decorates highlights with photo URLs from the upstream.
// Photos are decorative, so every failure is swallowed and counted, never
// surfaced to the caller.
type PhotoAttacher struct {
	provider photoProvider
	metrics  *metrics.Manager
}

func NewPhotoAttacher(provider photoProvider, metricsManager *metrics.Manager) *PhotoAttacher {
	return &PhotoAttacher{
		provider: provider,
		metrics:  metricsManager,
	}
}

// Attach fetches photos concurrently for every highlight backed by an
// activity and merges the URL lists back in once all fetches complete.
// The highlight order is left untouched.
func (p *PhotoAttacher) Attach(ctx context.Context, accessToken string, highlights []Highlight) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recap.photos.attach")
	defer span.End()

	activityIDs := make(map[int64]struct{})
	for _, h := range highlights {
		if h.Activity != nil {
			activityIDs[h.Activity.ExternalID] = struct{}{}
		}
	}
	if len(activityIDs) == 0 {
		return
	}

	var mutex sync.Mutex
	photoURLs := make(map[int64][]string)

	eg, egCtx := errgroup.WithContext(ctx)
	for activityID := range activityIDs {
		activityID := activityID
		eg.Go(func() error {
			photos, err := p.provider.GetPhotos(egCtx, accessToken, activityID)
			if err != nil {
				p.metrics.CounterPhotoFetchFailures.Inc()
				log.Warnf("attach photos: activity %d: %s", activityID, err)
				return nil
			}
			urls := make([]string, 0, len(photos))
			for _, photo := range photos {
				if url, ok := photo.URLs[photoSizeKey]; ok {
					urls = append(urls, url)
				}
			}
			if len(urls) == 0 {
				return nil
			}
			mutex.Lock()
			photoURLs[activityID] = urls
			mutex.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	for i := range highlights {
		if highlights[i].Activity == nil {
			continue
		}
		if urls, ok := photoURLs[highlights[i].Activity.ExternalID]; ok {
			highlights[i].Photos = urls
		}
	}
}
