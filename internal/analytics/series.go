// Package analytics derives period rollups, rolling series and activity
// statistics from an ingested corpus, and assembles the dashboard payload.
package analytics

import (
	"math"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// ChartSeries is a daily metric with rolling and lifetime averages
type ChartSeries struct {
	Values      []float64 `json:"values" yaml:"values"`
	Avg7d       []float64 `json:"avg_7d" yaml:"avg_7d"`
	Avg28d      []float64 `json:"avg_28d" yaml:"avg_28d"`
	AvgLifetime []float64 `json:"avg_lifetime" yaml:"avg_lifetime"`
}

// MetricSeries is a content metric with 7 and 28 period rolling averages
type MetricSeries struct {
	Values []float64 `json:"values" yaml:"values"`
	Avg7d  []float64 `json:"avg_7d" yaml:"avg_7d"`
	Avg28d []float64 `json:"avg_28d" yaml:"avg_28d"`
}

// NewChartSeries wraps values with 7 and 28 day rolling and expanding averages
func NewChartSeries(values []float64) ChartSeries {
	return ChartSeries{
		Values:      nonNil(values),
		Avg7d:       RollingAverage(values, 7),
		Avg28d:      RollingAverage(values, 28),
		AvgLifetime: ExpandingAverage(values),
	}
}

// NewMetricSeries wraps values with 7 and 28 period rolling averages
func NewMetricSeries(values []float64) MetricSeries {
	return MetricSeries{
		Values: nonNil(values),
		Avg7d:  RollingAverage(values, 7),
		Avg28d: RollingAverage(values, 28),
	}
}

// RollingAverage returns, for each index i, the mean of the trailing
// min(window, i+1) values rounded to 2 decimals. Windows below 1 act as 1.
func RollingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		w := values[start : i+1]
		out[i] = internal.Round(fsum(w)/float64(len(w)), 2)
	}
	return out
}

// ExpandingAverage returns the running mean of values[0..i] rounded to 2 decimals
func ExpandingAverage(values []float64) []float64 {
	out := make([]float64, len(values))
	s := 0.0
	for i, v := range values {
		s += v
		out[i] = internal.Round(s/float64(i+1), 2)
	}
	return out
}

// SafeDiv returns num/den rounded to 2 decimals, or def when den is zero
func SafeDiv(num, den, def float64) float64 {
	if den == 0 {
		return def
	}
	return internal.Round(num/den, 2)
}

// fsum adds with Neumaier compensation.
func fsum(values []float64) float64 {
	sum, c := 0.0, 0.0
	for _, x := range values {
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			c += (sum - t) + x
		} else {
			c += (x - t) + sum
		}
		sum = t
	}
	if c != 0 && !math.IsInf(c, 0) && !math.IsNaN(c) {
		sum += c
	}
	return sum
}

func ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func nonNil(values []float64) []float64 {
	if values == nil {
		return []float64{}
	}
	return values
}
