package athlete

import (
	"strings"
	"time"
)

// Athlete is one signed-in Strava user, together with the OAuth credentials
// needed to call the upstream API on their behalf.
type Athlete struct {
	ID             int64     `json:"id"` // the upstream athlete id doubles as our primary key
	Name           string    `json:"name"`
	ProfileURL     string    `json:"profileUrl"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiresAt int64     `json:"-"` // unix seconds
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FirstName returns everything before the first space of the full name.
func (a *Athlete) FirstName() string {
	first, _, _ := strings.Cut(a.Name, " ")
	if first == "" {
		return "Athlete"
	}
	return first
}

// LastName returns everything after the first space of the full name.
func (a *Athlete) LastName() string {
	_, last, _ := strings.Cut(a.Name, " ")
	return last
}
