package recap

// Totals are plain sums over a record set.
type Totals struct {
	Count           int     `json:"count"`
	DistanceMeters  float64 `json:"distanceMeters"`
	MovingTimeSecs  int     `json:"movingTimeSeconds"`
	ElevationMeters float64 `json:"elevationMeters"`
	KudosCount      int     `json:"kudosCount"`
}

func TotalsFor(records []ActivityRecord) Totals {
	var t Totals
	for _, rec := range records {
		t.Count++
		t.DistanceMeters += rec.DistanceMeters
		t.MovingTimeSecs += rec.MovingTimeSeconds
		t.ElevationMeters += rec.ElevationGainMeters
		t.KudosCount += rec.KudosCount
	}
	return t
}

// CountsBySport groups records by their display sport.
func CountsBySport(records []ActivityRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.DisplaySport()]++
	}
	return counts
}

// CountsByMonth counts records per calendar month, 0 through 11, taken from
// the local start time. Records with an unparseable local time are skipped.
func CountsByMonth(records []ActivityRecord) [12]int {
	var counts [12]int
	for _, rec := range records {
		startTime, ok := rec.StartTimeLocalParsed()
		if !ok {
			continue
		}
		counts[int(startTime.Month())-1]++
	}
	return counts
}

// CumulativeMonthlyTime returns, per month index i, the total moving time in
// seconds for months 0 through i. Used for year-progress visuals.
func CumulativeMonthlyTime(records []ActivityRecord) [12]int {
	var perMonth [12]int
	for _, rec := range records {
		startTime, ok := rec.StartTimeLocalParsed()
		if !ok {
			continue
		}
		perMonth[int(startTime.Month())-1] += rec.MovingTimeSeconds
	}

	var cumulative [12]int
	runningTotal := 0
	for i := range perMonth {
		runningTotal += perMonth[i]
		cumulative[i] = runningTotal
	}
	return cumulative
}
