package strava

// Activity is the raw upstream payload of one workout, as returned by
// GET /athlete/activities.
type Activity struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	SportType          string   `json:"sport_type"`
	Distance           float64  `json:"distance"`             // meters
	MovingTime         int      `json:"moving_time"`          // seconds
	ElapsedTime        int      `json:"elapsed_time"`         // seconds
	TotalElevationGain float64  `json:"total_elevation_gain"` // meters
	StartDate          string   `json:"start_date"`
	StartDateLocal     string   `json:"start_date_local"`
	Timezone           string   `json:"timezone"`
	KudosCount         int      `json:"kudos_count"`
	AverageSpeed       float64  `json:"average_speed"` // m/s
	MaxSpeed           float64  `json:"max_speed"`     // m/s
	AverageHeartrate   *float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate       *float64 `json:"max_heartrate,omitempty"`
	AverageWatts       *float64 `json:"average_watts,omitempty"`
	MaxWatts           *float64 `json:"max_watts,omitempty"`
	WeightedAvgWatts   *float64 `json:"weighted_average_watts,omitempty"`
}

// Photo is one photo attached to an activity; URLs are keyed by pixel size.
type Photo struct {
	UniqueID string            `json:"unique_id"`
	URLs     map[string]string `json:"urls"`
	Caption  string            `json:"caption,omitempty"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}

type AthleteInfo struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Profile   string `json:"profile"`
}

// TokenExchangeResponse is returned by the oauth token endpoint; on the
// initial code exchange it also carries the athlete summary.
type TokenExchangeResponse struct {
	Tokens
	Athlete *AthleteInfo `json:"athlete,omitempty"`
}
