package analytics

import "time"

// HourlyData counts user messages by weekday and hour of day. Weekday 0 is Monday.
type HourlyData struct {
	Heatmap       [7][24]int `json:"heatmap" yaml:"heatmap"`
	HourlyTotals  [24]int    `json:"hourly_totals" yaml:"hourly_totals"`
	WeekdayTotals [7]int     `json:"weekday_totals" yaml:"weekday_totals"`
}

// MondayIndex maps time.Weekday onto Monday=0 .. Sunday=6
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ComputeHourly fills the weekday by hour heatmap and its marginals
func ComputeHourly(timestamps []time.Time) HourlyData {
	var data HourlyData
	for _, ts := range timestamps {
		wd, hour := MondayIndex(ts.Weekday()), ts.Hour()
		data.Heatmap[wd][hour]++
		data.HourlyTotals[hour]++
		data.WeekdayTotals[wd]++
	}
	return data
}
