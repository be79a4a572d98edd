package recap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalsFor(t *testing.T) {
	records := []ActivityRecord{
		{DistanceMeters: 10000, MovingTimeSeconds: 3600, ElevationGainMeters: 120, KudosCount: 3},
		{DistanceMeters: 5000, MovingTimeSeconds: 1800, ElevationGainMeters: 30, KudosCount: 1},
	}

	totals := TotalsFor(records)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, float64(15000), totals.DistanceMeters)
	assert.Equal(t, 5400, totals.MovingTimeSecs)
	assert.Equal(t, float64(150), totals.ElevationMeters)
	assert.Equal(t, 4, totals.KudosCount)
}

func TestTotalsFor_Empty(t *testing.T) {
	assert.Equal(t, Totals{}, TotalsFor(nil))
}

func TestCountsBySport(t *testing.T) {
	records := []ActivityRecord{
		{Type: "Ride"},
		{Type: "Ride", SportType: "GravelRide"},
		{Type: "Run"},
		{Type: "Run"},
	}

	counts := CountsBySport(records)
	assert.Equal(t, map[string]int{
		"Ride":       1,
		"GravelRide": 1,
		"Run":        2,
	}, counts)
}

func TestCountsByMonth(t *testing.T) {
	records := []ActivityRecord{
		{StartTimeLocal: "2024-07-04T09:00:00Z"},
		{StartTimeLocal: "2024-07-20T17:30:00Z"},
		{StartTimeLocal: "2024-01-01T00:10:00Z"},
		{StartTimeLocal: "2024-12-31T23:59:59Z"},
	}

	counts := CountsByMonth(records)
	assert.Equal(t, 2, counts[6]) // July
	assert.Equal(t, 1, counts[0])
	assert.Equal(t, 1, counts[11])
	assert.Equal(t, 0, counts[5])
}

func TestCumulativeMonthlyTime(t *testing.T) {
	records := []ActivityRecord{
		{StartTimeLocal: "2024-01-10T08:00:00Z", MovingTimeSeconds: 100},
		{StartTimeLocal: "2024-02-10T08:00:00Z", MovingTimeSeconds: 200},
		{StartTimeLocal: "2024-02-20T08:00:00Z", MovingTimeSeconds: 50},
		{StartTimeLocal: "2024-12-01T08:00:00Z", MovingTimeSeconds: 1000},
	}

	cumulative := CumulativeMonthlyTime(records)
	assert.Equal(t, 100, cumulative[0])
	assert.Equal(t, 350, cumulative[1])
	assert.Equal(t, 350, cumulative[10]) // unchanged through empty months
	assert.Equal(t, 1350, cumulative[11])
}
