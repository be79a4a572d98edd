package recap

import (
	"context"
	"errors"
	"testing"

	"github.com/stmilos/yearinsport/internal/strava"
	"github.com/stmilos/yearinsport/internal/telemetry/metrics"

	"github.com/stretchr/testify/assert"
)

func TestPhotoAttacher_Attach(t *testing.T) {
	provider := &photoProviderMock{photos: map[int64][]strava.Photo{
		1: {
			{UniqueID: "p1", URLs: map[string]string{"600": "https://cdn/p1.jpg"}},
			{UniqueID: "p2", URLs: map[string]string{"600": "https://cdn/p2.jpg"}},
		},
	}}
	attacher := NewPhotoAttacher(provider, metrics.NewTestManager())

	rideRec := ActivityRecord{ExternalID: 1}
	runRec := ActivityRecord{ExternalID: 2}
	highlights := []Highlight{
		{Title: "Longest Ride", Activity: &rideRec},
		{Title: "Longest Run", Activity: &runRec},
		{Title: "Longest Streak"},
	}

	attacher.Attach(context.Background(), "acc-token", highlights)

	assert.Equal(t, []string{"https://cdn/p1.jpg", "https://cdn/p2.jpg"}, highlights[0].Photos)
	assert.Nil(t, highlights[1].Photos, "no photos upstream, nothing attached")
	assert.Nil(t, highlights[2].Photos, "no backing activity, nothing fetched")
}

func TestPhotoAttacher_FailSoft(t *testing.T) {
	provider := &photoProviderMock{err: errors.New("rate limited")}
	attacher := NewPhotoAttacher(provider, metrics.NewTestManager())

	rec := ActivityRecord{ExternalID: 1}
	highlights := []Highlight{{Title: "Longest Ride", Activity: &rec}}

	attacher.Attach(context.Background(), "acc-token", highlights)
	assert.Nil(t, highlights[0].Photos)
}
