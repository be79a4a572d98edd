package recap

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/stmilos/yearinsport/internal/strava"
)

// ActivityRecord is the canonical shape of one workout, independent of the
// upstream payload format.
type ActivityRecord struct {
	ID         int64 `json:"id"`
	ExternalID int64 `json:"externalId"`
	AthleteID  int64 `json:"athleteId"`

	Name      string `json:"name"`
	Type      string `json:"type"`
	SportType string `json:"sportType"`

	DistanceMeters      float64 `json:"distanceMeters"`
	MovingTimeSeconds   int     `json:"movingTimeSeconds"`
	ElapsedTimeSeconds  int     `json:"elapsedTimeSeconds"`
	ElevationGainMeters float64 `json:"elevationGainMeters"`

	// StartTimeLocal is a wall-clock string in the activity's own timezone.
	// The upstream erroneously appends a "Z" to it; parse it only through
	// ParseLocalTime so it is never shifted to the reader's zone.
	StartTimeUTC   string `json:"startTimeUtc"`
	StartTimeLocal string `json:"startTimeLocal"`
	Timezone       string `json:"timezone"`

	KudosCount      int     `json:"kudosCount"`
	AverageSpeedMps float64 `json:"averageSpeedMps"`
	MaxSpeedMps     float64 `json:"maxSpeedMps"`
	AvgHeartrate    *int    `json:"avgHeartrate,omitempty"`
	MaxHeartrate    *int    `json:"maxHeartrate,omitempty"`
	AvgWatts        *int    `json:"avgWatts,omitempty"`
	MaxWatts        *int    `json:"maxWatts,omitempty"`
	WeightedWatts   *int    `json:"weightedAvgWatts,omitempty"`

	Raw       json.RawMessage `json:"-"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// DisplaySport is the sport key used for filtering and grouping: the refined
// sport type when present, the raw activity type otherwise.
func (r *ActivityRecord) DisplaySport() string {
	if r.SportType != "" {
		return r.SportType
	}
	return r.Type
}

// IsSport reports whether either the raw or the refined type matches.
func (r *ActivityRecord) IsSport(sport string) bool {
	return r.Type == sport || r.SportType == sport
}

// StartTimeLocalParsed returns the naive local start time. Falls back to the
// UTC start string (also parsed naively) when the local one is unparseable,
// so callers never lose a record to a malformed field.
func (r *ActivityRecord) StartTimeLocalParsed() (time.Time, bool) {
	if t, err := ParseLocalTime(r.StartTimeLocal); err == nil {
		return t, true
	}
	if t, err := ParseLocalTime(r.StartTimeUTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseLocalTime parses an upstream local timestamp. The upstream appends a
// UTC zone marker to what is in fact a naive local wall-clock value, so any
// trailing zone marker is stripped before parsing and the result carries no
// zone shift.
func ParseLocalTime(value string) (time.Time, error) {
	value = strings.TrimSuffix(value, "Z")
	if i := strings.IndexAny(value, "+"); i > 10 {
		value = value[:i]
	}
	return time.Parse("2006-01-02T15:04:05", value)
}

// RecordFromUpstream converts one raw upstream activity into the canonical
// record, keeping the raw payload for forward compatibility.
func RecordFromUpstream(a strava.Activity, athleteID int64, fetchedAt time.Time) ActivityRecord {
	raw, err := json.Marshal(a)
	if err != nil {
		// the payload came out of a json decoder, this cannot realistically fail
		raw = nil
	}

	return ActivityRecord{
		ExternalID:          a.ID,
		AthleteID:           athleteID,
		Name:                a.Name,
		Type:                a.Type,
		SportType:           a.SportType,
		DistanceMeters:      a.Distance,
		MovingTimeSeconds:   a.MovingTime,
		ElapsedTimeSeconds:  a.ElapsedTime,
		ElevationGainMeters: a.TotalElevationGain,
		StartTimeUTC:        a.StartDate,
		StartTimeLocal:      a.StartDateLocal,
		Timezone:            a.Timezone,
		KudosCount:          a.KudosCount,
		AverageSpeedMps:     roundSpeed(a.AverageSpeed),
		MaxSpeedMps:         roundSpeed(a.MaxSpeed),
		AvgHeartrate:        roundOptional(a.AverageHeartrate),
		MaxHeartrate:        roundOptional(a.MaxHeartrate),
		AvgWatts:            roundOptional(a.AverageWatts),
		MaxWatts:            roundOptional(a.MaxWatts),
		WeightedWatts:       roundOptional(a.WeightedAvgWatts),
		Raw:                 raw,
		FetchedAt:           fetchedAt,
	}
}

func roundOptional(v *float64) *int {
	if v == nil {
		return nil
	}
	rounded := int(*v + 0.5)
	return &rounded
}
