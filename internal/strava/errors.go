package strava

import "errors"

var (
	// ErrAuthExpired means the stored credential could not be refreshed;
	// the athlete has to go through the OAuth flow again.
	ErrAuthExpired = errors.New("strava authentication expired")
	// ErrUpstreamUnavailable covers transient upstream failures (non-2xx,
	// network errors); safe to retry later.
	ErrUpstreamUnavailable = errors.New("strava api unavailable")
)
