package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// Gap is the silence between two consecutive user messages
type Gap struct {
	StartTimestamp string  `json:"start_timestamp" yaml:"start_timestamp"`
	EndTimestamp   string  `json:"end_timestamp" yaml:"end_timestamp"`
	LengthDays     float64 `json:"length_days" yaml:"length_days"`
}

// GapAnalysis holds every gap plus active/inactive day counts
type GapAnalysis struct {
	Gaps               []Gap   `json:"gaps" yaml:"gaps"`
	TotalDays          int     `json:"total_days" yaml:"total_days"`
	DaysActive         int     `json:"days_active" yaml:"days_active"`
	DaysInactive       int     `json:"days_inactive" yaml:"days_inactive"`
	ProportionInactive float64 `json:"proportion_inactive" yaml:"proportion_inactive"`
	LongestGap         *Gap    `json:"longest_gap" yaml:"longest_gap"`
}

// GapStats is GapAnalysis without the gap list
type GapStats struct {
	TotalDays          int     `json:"total_days" yaml:"total_days"`
	DaysActive         int     `json:"days_active" yaml:"days_active"`
	DaysInactive       int     `json:"days_inactive" yaml:"days_inactive"`
	ProportionInactive float64 `json:"proportion_inactive" yaml:"proportion_inactive"`
	LongestGap         *Gap    `json:"longest_gap" yaml:"longest_gap"`
}

// Stats drops the gap list
func (g GapAnalysis) Stats() GapStats {
	return GapStats{
		TotalDays:          g.TotalDays,
		DaysActive:         g.DaysActive,
		DaysInactive:       g.DaysInactive,
		ProportionInactive: g.ProportionInactive,
		LongestGap:         g.LongestGap,
	}
}

func sortedTimes(timestamps []time.Time) []time.Time {
	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return sorted
}

// activeDates returns the distinct calendar dates of the sorted timestamps
func activeDates(sorted []time.Time) map[time.Time]struct{} {
	dates := make(map[time.Time]struct{})
	for _, ts := range sorted {
		dates[internal.TruncateDay(ts)] = struct{}{}
	}
	return dates
}

// ComputeGapAnalysis measures every strictly positive gap between sorted
// timestamps, longest first, and counts active and inactive days between the
// first and last message inclusive
func ComputeGapAnalysis(timestamps []time.Time) GapAnalysis {
	if len(timestamps) == 0 {
		return GapAnalysis{Gaps: []Gap{}}
	}

	sorted := sortedTimes(timestamps)
	gaps := []Gap{}
	for i := 1; i < len(sorted); i++ {
		days := internal.SecondsBetween(sorted[i-1], sorted[i]) / 86400
		if days > 0 {
			gaps = append(gaps, Gap{
				StartTimestamp: internal.FormatISO(sorted[i-1]),
				EndTimestamp:   internal.FormatISO(sorted[i]),
				LengthDays:     days,
			})
		}
	}
	sortGapsDesc(gaps)

	dates := activeDates(sorted)
	first := internal.TruncateDay(sorted[0])
	last := internal.TruncateDay(sorted[len(sorted)-1])
	total := internal.DaysBetween(first, last) + 1
	inactive := total - len(dates)

	analysis := GapAnalysis{
		Gaps:         gaps,
		TotalDays:    total,
		DaysActive:   len(dates),
		DaysInactive: inactive,
	}
	if total > 0 {
		analysis.ProportionInactive = internal.Round(float64(inactive)/float64(total)*100, 2)
	}
	if len(gaps) > 0 {
		longest := gaps[0]
		analysis.LongestGap = &longest
	}
	return analysis
}

func sortGapsDesc(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].LengthDays > gaps[j].LengthDays })
}

// YearActivity counts active and inactive days for one calendar year, or
// across the whole history for the Overall row
type YearActivity struct {
	Year         string  `json:"year" yaml:"year"`
	TotalDays    int     `json:"total_days" yaml:"total_days"`
	DaysActive   int     `json:"days_active" yaml:"days_active"`
	DaysInactive int     `json:"days_inactive" yaml:"days_inactive"`
	PctActive    float64 `json:"pct_active" yaml:"pct_active"`
	PctInactive  float64 `json:"pct_inactive" yaml:"pct_inactive"`
}

// OverallYear labels the row covering the full history
const OverallYear = "Overall"

func newYearActivity(label string, start, end time.Time, active int) YearActivity {
	total := internal.DaysBetween(start, end) + 1
	row := YearActivity{
		Year:         label,
		TotalDays:    total,
		DaysActive:   active,
		DaysInactive: total - active,
	}
	if total > 0 {
		row.PctActive = internal.Round(float64(active)/float64(total)*100, 1)
		row.PctInactive = internal.Round(float64(total-active)/float64(total)*100, 1)
	}
	return row
}

// ComputeActivityByYear returns the Overall row followed by one row per
// year that has at least one active date. The first and last years are
// bounded by the first and last active dates.
func ComputeActivityByYear(timestamps []time.Time) []YearActivity {
	if len(timestamps) == 0 {
		return []YearActivity{}
	}

	sorted := sortedTimes(timestamps)
	dates := activeDates(sorted)
	first := internal.TruncateDay(sorted[0])
	last := internal.TruncateDay(sorted[len(sorted)-1])

	perYear := make(map[int]int)
	for d := range dates {
		perYear[d.Year()]++
	}
	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]YearActivity, 0, len(years)+1)
	rows = append(rows, newYearActivity(OverallYear, first, last, len(dates)))
	for _, y := range years {
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		if y == first.Year() {
			start = first
		}
		end := time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
		if y == last.Year() {
			end = last
		}
		rows = append(rows, newYearActivity(strconv.Itoa(y), start, end, perYear[y]))
	}
	return rows
}
