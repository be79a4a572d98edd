package recap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Highlight categories, in rough narrative order.
const (
	HighlightRecord  = "record"
	HighlightSocial  = "social"
	HighlightPattern = "pattern"
	HighlightFun     = "fun"
)

const (
	metersPerMile = 1609.34
	feetPerMeter  = 3.28084
	mphPerMps     = 2.23694
	everestMeters = 8848.86
	marathonMiles = 26.2
)

// Highlight is one pre-formatted recap card. Value and Subtitle carry the
// final display strings with unit conversion already applied.
type Highlight struct {
	Category string          `json:"category"`
	Title    string          `json:"title"`
	Value    string          `json:"value"`
	Subtitle string          `json:"subtitle,omitempty"`
	Activity *ActivityRecord `json:"activity,omitempty"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"`
	Photos   []string        `json:"photos,omitempty"`
}

// ComputeHighlights builds the ordered highlight list for one year of
// records. Cards whose source condition fails are skipped outright, never
// emitted empty; an empty record set yields an empty list.
func ComputeHighlights(records []ActivityRecord, year int) []Highlight {
	if len(records) == 0 {
		return []Highlight{}
	}

	var highlights []Highlight

	rides := filterSport(records, "Ride")
	runs := filterSport(records, "Run")

	if longestRide := maxBy(rides, func(r ActivityRecord) float64 { return r.DistanceMeters }); longestRide != nil {
		highlights = append(highlights, Highlight{
			Category: HighlightRecord,
			Title:    "Longest Ride",
			Value:    fmt.Sprintf("%s miles", formatDistance(longestRide.DistanceMeters)),
			Subtitle: longestRide.Name,
			Activity: longestRide,
			Icon:     "🚴",
			Color:    "from-orange-500 to-red-600",
		})
	}

	if longestRun := maxBy(runs, func(r ActivityRecord) float64 { return r.DistanceMeters }); longestRun != nil {
		highlights = append(highlights, Highlight{
			Category: HighlightRecord,
			Title:    "Longest Run",
			Value:    fmt.Sprintf("%s miles", formatDistance(longestRun.DistanceMeters)),
			Subtitle: longestRun.Name,
			Activity: longestRun,
			Icon:     "🏃",
			Color:    "from-green-500 to-teal-600",
		})
	}

	// snowboard lift-assisted elevation would dominate here, so it is excluded
	var climbCandidates []ActivityRecord
	for _, rec := range records {
		if !rec.IsSport("Snowboard") {
			climbCandidates = append(climbCandidates, rec)
		}
	}
	if biggestClimb := maxBy(climbCandidates, func(r ActivityRecord) float64 { return r.ElevationGainMeters }); biggestClimb != nil &&
		biggestClimb.ElevationGainMeters > 0 {
		highlights = append(highlights, Highlight{
			Category: HighlightRecord,
			Title:    "Biggest Climb",
			Value:    fmt.Sprintf("%s ft", formatElevation(biggestClimb.ElevationGainMeters)),
			Subtitle: biggestClimb.Name,
			Activity: biggestClimb,
			Icon:     "⛰️",
			Color:    "from-purple-500 to-indigo-600",
		})
	}

	if fastestRide := maxBy(rides, func(r ActivityRecord) float64 { return r.AverageSpeedMps }); fastestRide != nil {
		highlights = append(highlights, Highlight{
			Category: HighlightRecord,
			Title:    "Fastest Ride",
			Value:    fmt.Sprintf("%s mph", formatSpeed(fastestRide.AverageSpeedMps)),
			Subtitle: fastestRide.Name,
			Activity: fastestRide,
			Icon:     "⚡",
			Color:    "from-yellow-500 to-orange-600",
		})
	}

	var poweredRides []ActivityRecord
	for _, rec := range rides {
		if rec.MaxWatts != nil && *rec.MaxWatts > 0 {
			poweredRides = append(poweredRides, rec)
		}
	}
	if peakPower := maxBy(poweredRides, func(r ActivityRecord) float64 { return float64(*r.MaxWatts) }); peakPower != nil {
		highlights = append(highlights, Highlight{
			Category: HighlightRecord,
			Title:    "Peak Power",
			Value:    fmt.Sprintf("%d watts", *peakPower.MaxWatts),
			Subtitle: peakPower.Name,
			Activity: peakPower,
			Icon:     "⚡",
			Color:    "from-yellow-400 to-amber-600",
		})
	}

	longestWorkout := maxBy(records, func(r ActivityRecord) float64 { return float64(r.MovingTimeSeconds) })
	highlights = append(highlights, Highlight{
		Category: HighlightRecord,
		Title:    "Longest Workout",
		Value:    formatDuration(longestWorkout.MovingTimeSeconds),
		Subtitle: longestWorkout.Name,
		Activity: longestWorkout,
		Icon:     "⏱️",
		Color:    "from-blue-500 to-cyan-600",
	})

	if mostKudos := maxBy(records, func(r ActivityRecord) float64 { return float64(r.KudosCount) }); mostKudos.KudosCount > 0 {
		highlights = append(highlights, Highlight{
			Category: HighlightSocial,
			Title:    "Most Kudos",
			Value:    fmt.Sprintf("%d kudos", mostKudos.KudosCount),
			Subtitle: mostKudos.Name,
			Activity: mostKudos,
			Icon:     "👍",
			Color:    "from-pink-500 to-rose-600",
		})
	}

	if streak := LongestStreak(records); streak.LengthDays > 1 {
		highlights = append(highlights, Highlight{
			Category: HighlightPattern,
			Title:    "Longest Streak",
			Value:    fmt.Sprintf("%d days", streak.LengthDays),
			Subtitle: fmt.Sprintf("%s - %s", streak.StartDate.Format("Jan 2"), streak.EndDate.Format("Jan 2")),
			Icon:     "🔥",
			Color:    "from-amber-500 to-orange-600",
		})
	}

	highlights = append(highlights, timePatternHighlight(WorkoutTimePattern(records)))

	totals := TotalsFor(records)

	if everests := totals.ElevationMeters / everestMeters; everests >= 0.5 {
		card := Highlight{
			Category: HighlightFun,
			Title:    "Total Climbing",
			Icon:     "🏔️",
			Color:    "from-slate-500 to-gray-700",
		}
		if everests >= 1 {
			card.Value = fmt.Sprintf("%.1fx Everest", everests)
			card.Subtitle = fmt.Sprintf("%s ft total elevation", formatElevation(totals.ElevationMeters))
		} else {
			card.Value = fmt.Sprintf("%s ft", formatElevation(totals.ElevationMeters))
			card.Subtitle = fmt.Sprintf("%.0f%% of an Everest", everests*100)
		}
		highlights = append(highlights, card)
	}

	totalMiles := totals.DistanceMeters / metersPerMile
	if comparison := distanceComparison(totalMiles); comparison != "" {
		highlights = append(highlights, Highlight{
			Category: HighlightFun,
			Title:    "Total Distance",
			Value:    fmt.Sprintf("%s miles", withThousandsSep(int(math.Round(totalMiles)))),
			Subtitle: comparison,
			Icon:     "🗺️",
			Color:    "from-teal-500 to-cyan-600",
		})
	}

	highlights = append(highlights, Highlight{
		Category: HighlightFun,
		Title:    fmt.Sprintf("Your %d", year),
		Value:    fmt.Sprintf("%d workouts", totals.Count),
		Subtitle: fmt.Sprintf("%d hours of movement", int(math.Round(float64(totals.MovingTimeSecs)/3600))),
		Icon:     "🏆",
		Color:    "from-strava-orange to-orange-600",
	})

	return highlights
}

func timePatternHighlight(pattern TimePattern) Highlight {
	card := Highlight{
		Category: HighlightPattern,
		Title:    pattern.Label,
		Value:    fmt.Sprintf("%d%%", pattern.Percentage),
	}
	switch pattern.Label {
	case "Early Bird":
		card.Subtitle = "of workouts before noon"
		card.Icon = "🌅"
		card.Color = "from-yellow-400 to-orange-500"
	case "Night Owl":
		card.Subtitle = "of workouts in the evening"
		card.Icon = "🌙"
		card.Color = "from-indigo-600 to-purple-700"
	default:
		card.Subtitle = "workouts spread throughout the day"
		card.Icon = "☀️"
		card.Color = "from-sky-400 to-blue-500"
	}
	return card
}

// distanceComparison picks the first matching narrative threshold, largest
// first, or returns "" when the year total is below all of them.
func distanceComparison(totalMiles float64) string {
	switch {
	case totalMiles >= 2451:
		return fmt.Sprintf("Coast to coast (%dx)", int(math.Round(totalMiles/2451)))
	case totalMiles >= 1000:
		return "NYC to Miami and back"
	case totalMiles >= 500:
		return "LA to San Francisco (round trip)"
	case totalMiles >= 100:
		return fmt.Sprintf("%d marathons", int(math.Round(totalMiles/marathonMiles)))
	default:
		return ""
	}
}

func filterSport(records []ActivityRecord, sport string) []ActivityRecord {
	var filtered []ActivityRecord
	for _, rec := range records {
		if rec.IsSport(sport) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// maxBy returns the record with the strictly greatest key; the first
// occurrence wins on ties. Nil for an empty input.
func maxBy(records []ActivityRecord, key func(ActivityRecord) float64) *ActivityRecord {
	if len(records) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(records); i++ {
		if key(records[i]) > key(records[best]) {
			best = i
		}
	}
	return &records[best]
}

func formatDistance(meters float64) string {
	miles := meters / metersPerMile
	if miles >= 100 {
		return withThousandsSep(int(math.Round(miles)))
	}
	return strconv.FormatFloat(miles, 'f', 1, 64)
}

func formatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

func formatElevation(meters float64) string {
	return withThousandsSep(int(math.Round(meters * feetPerMeter)))
}

func formatSpeed(mps float64) string {
	return strconv.FormatFloat(mps*mphPerMps, 'f', 1, 64)
}

func withThousandsSep(n int) string {
	digits := strconv.Itoa(n)
	if n < 0 {
		return "-" + withThousandsSep(-n)
	}
	if len(digits) <= 3 {
		return digits
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return strings.Join(groups, ",")
}
