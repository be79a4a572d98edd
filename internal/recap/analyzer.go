package recap

import (
	"math"
	"sort"
	"time"
)

// Streak is the longest run of consecutive local calendar days with at
// least one activity.
type Streak struct {
	LengthDays int       `json:"lengthDays"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
}

// TimePattern classifies when the athlete tends to work out.
type TimePattern struct {
	Label      string `json:"label"`
	PeakHour   int    `json:"peakHour"`
	Percentage int    `json:"percentage"`
}

// LongestStreak dedupes records down to distinct local calendar dates and
// scans them in ascending order. A gap of exactly one day extends the
// current run, anything else restarts it. When several runs share the max
// length, the earliest one wins. No records means a zero streak anchored
// at today.
func LongestStreak(records []ActivityRecord) Streak {
	dateSet := make(map[time.Time]struct{})
	for _, rec := range records {
		startTime, ok := rec.StartTimeLocalParsed()
		if !ok {
			continue
		}
		day := time.Date(startTime.Year(), startTime.Month(), startTime.Day(), 0, 0, 0, 0, time.UTC)
		dateSet[day] = struct{}{}
	}

	if len(dateSet) == 0 {
		today := time.Now().Truncate(24 * time.Hour)
		return Streak{LengthDays: 0, StartDate: today, EndDate: today}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	maxStreak := Streak{LengthDays: 1, StartDate: dates[0], EndDate: dates[0]}
	currentLen := 1
	currentStart := dates[0]
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
			currentLen++
			if currentLen > maxStreak.LengthDays {
				maxStreak = Streak{LengthDays: currentLen, StartDate: currentStart, EndDate: dates[i]}
			}
		} else {
			currentLen = 1
			currentStart = dates[i]
		}
	}

	return maxStreak
}

// WorkoutTimePattern buckets records by local start hour. Morning is
// [5, 12), evening is [17, 22); the label needs the winning share to be
// both greater than the other and above 30 percent, otherwise the athlete
// is an all-day one. Peak hour ties go to the lower hour.
func WorkoutTimePattern(records []ActivityRecord) TimePattern {
	var hourCounts [24]int
	total := 0
	for _, rec := range records {
		startTime, ok := rec.StartTimeLocalParsed()
		if !ok {
			continue
		}
		hourCounts[startTime.Hour()]++
		total++
	}

	if total == 0 {
		return TimePattern{Label: "Active", PeakHour: 12, Percentage: 0}
	}

	peakHour := 0
	morningCount, eveningCount := 0, 0
	for hour, count := range hourCounts {
		if count > hourCounts[peakHour] {
			peakHour = hour
		}
		if hour >= 5 && hour < 12 {
			morningCount += count
		}
		if hour >= 17 && hour < 22 {
			eveningCount += count
		}
	}

	morningPct := roundPct(morningCount, total)
	eveningPct := roundPct(eveningCount, total)

	switch {
	case morningPct > eveningPct && morningPct > 30:
		return TimePattern{Label: "Early Bird", PeakHour: peakHour, Percentage: morningPct}
	case eveningPct > morningPct && eveningPct > 30:
		return TimePattern{Label: "Night Owl", PeakHour: peakHour, Percentage: eveningPct}
	default:
		pct := morningPct
		if eveningPct > pct {
			pct = eveningPct
		}
		return TimePattern{Label: "All-Day Athlete", PeakHour: peakHour, Percentage: pct}
	}
}

func roundPct(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
